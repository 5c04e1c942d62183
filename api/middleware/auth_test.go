package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/access"
	"github.com/agromart/agromart-backend/pkg/auth"
	"github.com/agromart/agromart-backend/pkg/auth/session"
	"github.com/agromart/agromart-backend/pkg/config"
	"github.com/agromart/agromart-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "agromart", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingOrMalformedToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler())

	for name, header := range map[string]string{
		"missing":    "",
		"no scheme":  "abc.def.ghi",
		"bad token":  "Bearer invalid",
		"empty auth": "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 got %d", resp.Code)
			}
		})
	}
}

func TestAuthSeedsIdentity(t *testing.T) {
	userID := uuid.New()
	token, accessID := mintTestToken(t, userID, enums.RoleSeller)

	var (
		gotUser   uuid.UUID
		gotRole   enums.Role
		gotAccess string
	)
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser != userID || gotRole != enums.RoleSeller || gotAccess != accessID {
		t.Fatalf("unexpected identity %s %s %s", gotUser, gotRole, gotAccess)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New(), enums.RoleCustomer)

	cases := map[string]struct {
		verifier stubSessionVerifier
		status   int
	}{
		"revoked":    {verifier: stubSessionVerifier{ok: false}, status: http.StatusUnauthorized},
		"redis down": {verifier: stubSessionVerifier{err: errors.New("dial tcp")}, status: http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := Auth(testJWT, tc.verifier, nil)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestRequireCapability(t *testing.T) {
	cases := []struct {
		name   string
		role   enums.Role
		status int
	}{
		{"customer cannot send notifications", enums.RoleCustomer, http.StatusForbidden},
		{"admin can send notifications", enums.RoleAdmin, http.StatusOK},
		{"anonymous", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireCapability(access.CapabilitySendNotifications, nil)(okHandler())
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.role != "" {
				req = req.WithContext(WithIdentity(req.Context(), uuid.New(), tc.role))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
		})
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.Role) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	token, _ := mintTestToken(t, userID, enums.RoleSeller)

	var seen uuid.UUID
	handler := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK || seen != uuid.Nil {
		t.Fatalf("anonymous request: status %d user %s", resp.Code, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || seen != userID {
		t.Fatalf("authenticated request: status %d user %s", resp.Code, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", resp.Code)
	}
}
