package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ERPlora/module-training/internal/config"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/logger"
)

// HeaderPartial marks a partial-refresh request from the presentation layer.
const HeaderPartial = "HX-Request"

const headerPartialRedirect = "HX-Redirect"

// ErrNoSession is returned when a request carries no session token.
var ErrNoSession = errors.New("no session")

// Claims is the session token payload issued by the host application.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// Sessions verifies (and, for tooling, issues) HS256 session tokens.
type Sessions struct {
	secret   func() []byte
	issuer   string
	cookie   string
	loginURL string
	now      func() time.Time
}

// NewSessions creates a Sessions verifier from the auth config.
func NewSessions(cfg config.Auth) *Sessions {
	return &Sessions{
		secret:   staticSecret([]byte(cfg.JWTSecret)),
		issuer:   cfg.Issuer,
		cookie:   cfg.CookieName,
		loginURL: cfg.LoginURL,
		now:      time.Now,
	}
}

// WithSecret makes s read its signing secret from fn on every call, so a
// rotated secret takes effect without a restart.
func (s *Sessions) WithSecret(fn func() []byte) *Sessions {
	s.secret = fn
	return s
}

func staticSecret(b []byte) func() []byte {
	return func() []byte { return b }
}

// Issue signs a session token for userID in tenant tid.
func (s *Sessions) Issue(tid tenant.ID, userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TenantID: tid.String(),
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret())
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Verify parses a token and returns the principal it authenticates.
func (s *Sessions) Verify(raw string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret(), nil
	}, opts...); err != nil {
		return Principal{}, fmt.Errorf("verify session: %w", err)
	}

	tid, err := tenant.Parse(claims.TenantID)
	if err != nil {
		return Principal{}, fmt.Errorf("verify session: %w", err)
	}
	return Principal{TenantID: tid, UserID: claims.UserID}, nil
}

// token extracts the session token from the Authorization header, the
// session cookie or, for WebSocket upgrades only, the token query parameter.
func (s *Sessions) token(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), nil
	}
	if s.cookie != "" {
		if c, err := r.Cookie(s.cookie); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, nil
		}
	}
	return "", ErrNoSession
}

// Require is middleware that admits only requests with a valid session.
// Others are redirected to the login URL; partial-refresh and WebSocket
// requests get a 401 instead, since they cannot follow a redirect.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := s.token(r)
		var p Principal
		if err == nil {
			p, err = s.Verify(raw)
		}
		if err != nil {
			s.reject(w, r)
			return
		}

		ctx := WithPrincipal(r.Context(), p)
		ctx = logger.WithTenant(ctx, p.TenantID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) reject(w http.ResponseWriter, r *http.Request) {
	target := s.loginRedirect(r.URL.RequestURI())
	switch {
	case r.Header.Get(HeaderPartial) != "":
		w.Header().Set(headerPartialRedirect, target)
		w.WriteHeader(http.StatusUnauthorized)
	case strings.EqualFold(r.Header.Get("Upgrade"), "websocket"):
		http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
	default:
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// loginRedirect appends next=<uri> to the login URL.
func (s *Sessions) loginRedirect(next string) string {
	u, err := url.Parse(s.loginURL)
	if err != nil {
		return s.loginURL
	}
	q := u.Query()
	q.Set("next", next)
	u.RawQuery = q.Encode()
	return u.String()
}
