package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/internal/notifications"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

type testNotificationsService struct {
	notifications.Service
	listFn       func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn   func(ctx context.Context, userID, notificationID uuid.UUID) (*notifications.NotificationDTO, error)
	createFn     func(ctx context.Context, input notifications.CreateInput) (*notifications.NotificationDTO, error)
	createBulkFn func(ctx context.Context, input notifications.BulkInput) (int64, error)
	updatePrefFn func(ctx context.Context, userID uuid.UUID, input notifications.UpdatePreferencesInput) (*notifications.PreferencesDTO, error)
	markUnreadFn func(ctx context.Context, userID, notificationID uuid.UUID) (*notifications.NotificationDTO, error)
	markAllFn    func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFn     func(ctx context.Context, userID, notificationID uuid.UUID) error
	clearAllFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	unreadFn     func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *testNotificationsService) MarkUnread(ctx context.Context, userID, notificationID uuid.UUID) (*notifications.NotificationDTO, error) {
	return s.markUnreadFn(ctx, userID, notificationID)
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.markAllFn(ctx, userID)
}

func (s *testNotificationsService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.deleteFn(ctx, userID, notificationID)
}

func (s *testNotificationsService) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.clearAllFn(ctx, userID)
}

func (s *testNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.unreadFn(ctx, userID)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return s.listFn(ctx, params)
}

func (s *testNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*notifications.NotificationDTO, error) {
	return s.markReadFn(ctx, userID, notificationID)
}

func (s *testNotificationsService) Create(ctx context.Context, input notifications.CreateInput) (*notifications.NotificationDTO, error) {
	return s.createFn(ctx, input)
}

func (s *testNotificationsService) CreateBulk(ctx context.Context, input notifications.BulkInput) (int64, error) {
	return s.createBulkFn(ctx, input)
}

func (s *testNotificationsService) UpdatePreferences(ctx context.Context, userID uuid.UUID, input notifications.UpdatePreferencesInput) (*notifications.PreferencesDTO, error) {
	return s.updatePrefFn(ctx, userID, input)
}

func TestListNotificationsPassesQuery(t *testing.T) {
	userID := uuid.New()
	var got notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			got = params
			return &notifications.ListResult{Notifications: []notifications.NotificationDTO{}, UnreadCount: 3}, nil
		},
	}

	req := newRequest(http.MethodGet, "/api/v1/notifications?page=2&limit=20&filter=unread", "", userID, enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if got.UserID != userID || got.Page != 2 || got.Limit != 20 || got.Filter != "unread" {
		t.Fatalf("unexpected params %+v", got)
	}
	var body notifications.ListResult
	decodeData(t, rec, &body)
	if body.UnreadCount != 3 {
		t.Fatalf("expected unread count 3, got %d", body.UnreadCount)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	svc := &testNotificationsService{}
	req := newRequest(http.MethodGet, "/api/v1/notifications?limit=500", "", uuid.New(), enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestListNotificationsRequiresIdentity(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/notifications", "", uuid.Nil, "", nil)
	rec := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestMarkNotificationReadUsesPathAndIdentity(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, uid, nid uuid.UUID) (*notifications.NotificationDTO, error) {
			called = true
			if uid != userID || nid != notificationID {
				t.Fatalf("unexpected ids %s %s", uid, nid)
			}
			return &notifications.NotificationDTO{ID: nid, UserID: uid, IsRead: true}, nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/notifications/"+notificationID.String()+"/read", "", userID, enums.RoleCustomer,
		map[string]string{"notificationId": notificationID.String()})
	rec := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if !called {
		t.Fatal("expected service call")
	}
	var dto notifications.NotificationDTO
	decodeData(t, rec, &dto)
	if !dto.IsRead {
		t.Fatal("expected read notification in response")
	}
}

func TestMarkNotificationReadForeignRowIsNotFound(t *testing.T) {
	notificationID := uuid.New()
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, uid, nid uuid.UUID) (*notifications.NotificationDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		},
	}

	req := newRequest(http.MethodPut, "/", "", uuid.New(), enums.RoleCustomer,
		map[string]string{"notificationId": notificationID.String()})
	rec := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusNotFound)
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestMarkNotificationReadRejectsMalformedID(t *testing.T) {
	req := newRequest(http.MethodPut, "/", "", uuid.New(), enums.RoleCustomer,
		map[string]string{"notificationId": "not-a-uuid"})
	rec := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAdminCreateNotificationSingle(t *testing.T) {
	target := uuid.New()
	var got notifications.CreateInput
	svc := &testNotificationsService{
		createFn: func(ctx context.Context, input notifications.CreateInput) (*notifications.NotificationDTO, error) {
			got = input
			return &notifications.NotificationDTO{ID: uuid.New(), UserID: input.UserID, Type: input.Type}, nil
		},
	}

	body := `{"userId":"` + target.String() + `","type":"system_announcement","title":"Maintenance","message":"Down at noon","data":{"announcement":{"link":"https://agromart.example/status"}}}`
	req := newRequest(http.MethodPost, "/api/v1/notifications", body, uuid.New(), enums.RoleAdmin, nil)
	rec := httptest.NewRecorder()
	AdminCreateNotification(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusCreated)
	if got.UserID != target || got.Type != enums.NotificationTypeSystemAnnouncement {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.Data == nil || got.Data.Announcement == nil || got.Data.Announcement.Link == "" {
		t.Fatalf("expected announcement payload, got %+v", got.Data)
	}
}

func TestAdminCreateNotificationBulkReportsCount(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc := &testNotificationsService{
		createBulkFn: func(ctx context.Context, input notifications.BulkInput) (int64, error) {
			if len(input.UserIDs) != len(ids) {
				t.Fatalf("expected %d recipients, got %d", len(ids), len(input.UserIDs))
			}
			return int64(len(input.UserIDs)), nil
		},
	}

	body := `{"userIds":["` + ids[0].String() + `","` + ids[1].String() + `","` + ids[2].String() + `"],"type":"system_announcement","title":"Hi","message":"Hello"}`
	req := newRequest(http.MethodPost, "/api/v1/notifications", body, uuid.New(), enums.RoleAdmin, nil)
	rec := httptest.NewRecorder()
	AdminCreateNotification(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusCreated)
	var resp map[string]int64
	decodeData(t, rec, &resp)
	if resp["count"] != 3 {
		t.Fatalf("expected count 3, got %v", resp)
	}
}

func TestAdminCreateNotificationValidation(t *testing.T) {
	userID := uuid.New().String()
	cases := map[string]string{
		"no recipient":  `{"type":"welcome","title":"Hi","message":"Hello"}`,
		"both":          `{"userId":"` + userID + `","userIds":["` + userID + `"],"type":"welcome","title":"Hi","message":"Hello"}`,
		"unknown type":  `{"userId":"` + userID + `","type":"promo","title":"Hi","message":"Hello"}`,
		"missing title": `{"userId":"` + userID + `","type":"welcome","message":"Hello"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := newRequest(http.MethodPost, "/api/v1/notifications", body, uuid.New(), enums.RoleAdmin, nil)
			rec := httptest.NewRecorder()
			AdminCreateNotification(&testNotificationsService{}, testLogger())(rec, req)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestUpdateNotificationPreferencesPassesPartialInput(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		updatePrefFn: func(ctx context.Context, uid uuid.UUID, input notifications.UpdatePreferencesInput) (*notifications.PreferencesDTO, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if input.NewProduct == nil || *input.NewProduct {
				t.Fatalf("expected newProduct=false, got %+v", input.NewProduct)
			}
			if input.OrderPlaced != nil {
				t.Fatal("expected orderPlaced untouched")
			}
			return &notifications.PreferencesDTO{OrderPlaced: true, OrderStatus: true, LowStock: true, Welcome: true}, nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/notifications/preferences", `{"newProduct":false}`, userID, enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	UpdateNotificationPreferences(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	var prefs notifications.PreferencesDTO
	decodeData(t, rec, &prefs)
	if prefs.NewProduct {
		t.Fatal("expected newProduct disabled")
	}
}

func TestMarkAllNotificationsReadReturnsCount(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		markAllFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return 3, nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/notifications/mark-all-read", "", userID, enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	body := decodeKeys(t, rec)
	if string(body["count"]) != "3" || len(body) != 1 {
		t.Fatalf("expected {count:3}, got %v", body)
	}
}

func TestClearNotificationsReturnsCount(t *testing.T) {
	svc := &testNotificationsService{
		clearAllFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			return 4, nil
		},
	}

	req := newRequest(http.MethodDelete, "/api/v1/notifications/clear-all", "", uuid.New(), enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	ClearNotifications(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	body := decodeKeys(t, rec)
	if string(body["count"]) != "4" || len(body) != 1 {
		t.Fatalf("expected {count:4}, got %v", body)
	}
}

func TestNotificationUnreadCount(t *testing.T) {
	svc := &testNotificationsService{
		unreadFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			return 7, nil
		},
	}

	req := newRequest(http.MethodGet, "/api/v1/notifications/unread-count", "", uuid.New(), enums.RoleRider, nil)
	rec := httptest.NewRecorder()
	NotificationUnreadCount(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	body := decodeKeys(t, rec)
	if string(body["unreadCount"]) != "7" {
		t.Fatalf("expected unreadCount 7, got %v", body)
	}
}

func TestMarkNotificationUnread(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc := &testNotificationsService{
		markUnreadFn: func(ctx context.Context, uid, nid uuid.UUID) (*notifications.NotificationDTO, error) {
			if uid != userID || nid != id {
				t.Fatalf("unexpected call %s %s", uid, nid)
			}
			return &notifications.NotificationDTO{ID: nid, UserID: uid, IsRead: false}, nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/notifications/"+id.String()+"/unread", "", userID, enums.RoleCustomer,
		map[string]string{"notificationId": id.String()})
	rec := httptest.NewRecorder()
	MarkNotificationUnread(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	var dto notifications.NotificationDTO
	decodeData(t, rec, &dto)
	if dto.ID != id || dto.IsRead {
		t.Fatalf("unexpected notification %+v", dto)
	}
}

func TestDeleteNotification(t *testing.T) {
	id := uuid.New()
	svc := &testNotificationsService{
		deleteFn: func(ctx context.Context, uid, nid uuid.UUID) error {
			return nil
		},
	}

	req := newRequest(http.MethodDelete, "/api/v1/notifications/"+id.String(), "", uuid.New(), enums.RoleCustomer,
		map[string]string{"notificationId": id.String()})
	rec := httptest.NewRecorder()
	DeleteNotification(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	body := decodeKeys(t, rec)
	if string(body["deleted"]) != "true" {
		t.Fatalf("expected deleted true, got %v", body)
	}
}

func TestDeleteNotificationOfAnotherUserIsNotFound(t *testing.T) {
	id := uuid.New()
	svc := &testNotificationsService{
		deleteFn: func(ctx context.Context, uid, nid uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		},
	}

	req := newRequest(http.MethodDelete, "/api/v1/notifications/"+id.String(), "", uuid.New(), enums.RoleCustomer,
		map[string]string{"notificationId": id.String()})
	rec := httptest.NewRecorder()
	DeleteNotification(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusNotFound)
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", code)
	}
}
