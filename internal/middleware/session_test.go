package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ERPlora/module-training/internal/config"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/logger"
)

const testHub = tenant.ID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func testSessions() *Sessions {
	return NewSessions(config.Auth{
		JWTSecret:  "test-secret",
		Issuer:     "test-hub",
		CookieName: "hub_session",
		LoginURL:   "/accounts/login/",
	})
}

func protected(t *testing.T, s *Sessions) (http.Handler, *Principal) {
	t.Helper()
	var got Principal
	h := s.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Error("expected principal in context")
		}
		if logger.Tenant(r.Context()) != p.TenantID.String() {
			t.Error("expected tenant in log context")
		}
		got = p
		w.WriteHeader(http.StatusOK)
	}))
	return h, &got
}

func TestSessionIssueVerifyRoundTrip(t *testing.T) {
	s := testSessions()
	token, err := s.Issue(testHub, "user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if p.TenantID != testHub || p.UserID != "user-1" {
		t.Errorf("principal = %+v", p)
	}
}

func TestSessionBearerAccepted(t *testing.T) {
	s := testSessions()
	token, _ := s.Issue(testHub, "user-1", time.Hour)
	h, got := protected(t, s)

	req := httptest.NewRequest(http.MethodGet, "/training/skills/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.TenantID != testHub {
		t.Errorf("tenant = %q", got.TenantID)
	}
}

func TestSessionCookieAccepted(t *testing.T) {
	s := testSessions()
	token, _ := s.Issue(testHub, "user-1", time.Hour)
	h, _ := protected(t, s)

	req := httptest.NewRequest(http.MethodGet, "/training/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "hub_session", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionQueryTokenOnlyForWebSocket(t *testing.T) {
	s := testSessions()
	token, _ := s.Issue(testHub, "user-1", time.Hour)
	h, _ := protected(t, s)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("plain request with query token: expected 302, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws?token="+token, http.NoBody)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("websocket upgrade with query token: expected 200, got %d", rec.Code)
	}
}

func TestSessionMissingRedirects(t *testing.T) {
	h, _ := protected(t, testSessions())

	req := httptest.NewRequest(http.MethodGet, "/training/skills/?q=weld", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/accounts/login/" {
		t.Errorf("redirect path = %q", loc.Path)
	}
	if next := loc.Query().Get("next"); next != "/training/skills/?q=weld" {
		t.Errorf("next = %q", next)
	}
}

func TestSessionPartialRequestGets401(t *testing.T) {
	h, _ := protected(t, testSessions())

	req := httptest.NewRequest(http.MethodPost, "/training/skills/bulk/", http.NoBody)
	req.Header.Set(HeaderPartial, "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Redirect") == "" {
		t.Error("expected HX-Redirect header")
	}
}

func TestSessionRejectsBadTokens(t *testing.T) {
	s := testSessions()
	expired, _ := s.Issue(testHub, "u", -time.Minute)

	other := NewSessions(config.Auth{JWTSecret: "other-secret", Issuer: "test-hub"})
	foreign, _ := other.Issue(testHub, "u", time.Hour)

	wrongIssuer := NewSessions(config.Auth{JWTSecret: "test-secret", Issuer: "elsewhere"})
	misissued, _ := wrongIssuer.Issue(testHub, "u", time.Hour)

	badTenant, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TenantID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-hub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TenantID:         testHub.String(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-hub"},
	}).SignedString([]byte("test-secret"))

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"wrong issuer": misissued,
		"bad tenant":   badTenant,
		"no expiry":    noExpiry,
		"garbage":      "not.a.jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Verify(token); err == nil {
				t.Error("expected verification error")
			}
		})
	}
}

func TestSessionSecretRotation(t *testing.T) {
	secret := []byte("first-secret")
	s := testSessions().WithSecret(func() []byte { return secret })

	old, err := s.Issue(testHub, "u", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(old); err != nil {
		t.Fatalf("verify before rotation: %v", err)
	}

	secret = []byte("second-secret")
	if _, err := s.Verify(old); err == nil {
		t.Error("token signed with the rotated-out secret should be rejected")
	}
	fresh, _ := s.Issue(testHub, "u", time.Hour)
	if _, err := s.Verify(fresh); err != nil {
		t.Errorf("verify after rotation: %v", err)
	}
}
