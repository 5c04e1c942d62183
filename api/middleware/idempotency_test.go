package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key], _ = value.(string)
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key], _ = value.(string)
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func checkoutRequest(userID uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req.WithContext(WithIdentity(req.Context(), userID, enums.RoleCustomer))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.Error.Code
}

func TestIdempotencyRequiredHeader(t *testing.T) {
	called := false
	handler := Idempotency(newFakeStore(), CheckoutIdempotency, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(uuid.New(), "", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyOptionalHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, OptionalIdempotency, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, checkoutRequest(uuid.New(), "", `{}`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	}
	if calls != 2 || len(store.data) != 0 {
		t.Fatalf("expected pass-through without storage, calls=%d stored=%d", calls, len(store.data))
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	calls := 0
	handler := Idempotency(store, CheckoutIdempotency, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderNumber":"AGR-1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(userID, "abc", `{"shippingAddressId":null}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, checkoutRequest(userID, "abc", `{"shippingAddressId":null}`))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if replay.Header().Get(replayedHeader) != "true" {
		t.Fatalf("expected replay marker header")
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if replay.Body.String() != first.Body.String() {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, checkoutRequest(uuid.New(), "abc", `{"shippingAddressId":null}`))
	if calls != 2 || other.Header().Get(replayedHeader) != "" {
		t.Fatalf("keys must be scoped per user")
	}
}

func TestIdempotencyRejectsBodyChange(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	handler := Idempotency(store, CheckoutIdempotency, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(userID, "xyz", `{"a":1}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(userID, "xyz", `{"a":2}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeConflict) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeConflict, code)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	var inner *httptest.ResponseRecorder
	var handler http.Handler
	handler = Idempotency(store, CheckoutIdempotency, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = httptest.NewRecorder()
		handler.ServeHTTP(inner, checkoutRequest(userID, "dup", `{}`))
		w.WriteHeader(http.StatusCreated)
	}))

	outer := httptest.NewRecorder()
	handler.ServeHTTP(outer, checkoutRequest(userID, "dup", `{}`))
	if outer.Code != http.StatusCreated {
		t.Fatalf("expected outer 201 got %d", outer.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected concurrent duplicate to get 409")
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	status := http.StatusServiceUnavailable
	calls := 0
	handler := Idempotency(store, CheckoutIdempotency, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(userID, "retry", `{}`))
	if len(store.data) != 0 {
		t.Fatalf("failed request must not keep its key")
	}
	status = http.StatusCreated
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(userID, "retry", `{}`))
	if rec.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("expected retry to execute, code=%d calls=%d", rec.Code, calls)
	}
}
