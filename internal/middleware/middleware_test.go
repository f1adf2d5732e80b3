package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/pkg/auth"
)

type stubResolver struct {
	principals map[uuid.UUID]*model.Principal
	err        error
}

func (s *stubResolver) Resolve(_ context.Context, id uuid.UUID) (*model.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.principals[id]; ok {
		return p, nil
	}
	return &model.Principal{ID: id, Kind: model.PrincipalNone}, nil
}

type stubEntitlement struct {
	access *model.Access
	calls  int
}

func (s *stubEntitlement) Check(context.Context, uuid.UUID) *model.Access {
	s.calls++
	return s.access
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() auth.JWTService {
	return auth.NewJWTService(auth.Config{Secret: "test-secret", AccessTTL: time.Hour, RefreshTTL: time.Hour})
}

func anesthesiologist(id uuid.UUID) *model.Principal {
	a := &model.Anesthesiologist{Name: "Dra. Ana"}
	a.ID = id
	return &model.Principal{ID: id, Kind: model.PrincipalAnesthesiologist, Anesthesiologist: a}
}

func secretary(id uuid.UUID) *model.Principal {
	s := &model.Secretary{Name: "Bia"}
	s.ID = id
	return &model.Principal{ID: id, Kind: model.PrincipalSecretary, Secretary: s}
}

func newEngine(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{m.Authenticate()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"kind": handler.Principal(c).Kind})
	})
	r.GET("/me", chain...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwt := newJWT()
	ownerID, secID, orphanID := uuid.New(), uuid.New(), uuid.New()
	resolver := &stubResolver{principals: map[uuid.UUID]*model.Principal{
		ownerID: anesthesiologist(ownerID),
		secID:   secretary(secID),
	}}
	r := newEngine(NewAuthMiddleware(jwt, resolver, &stubEntitlement{}))

	token := func(id uuid.UUID) string {
		tok, _, err := jwt.GenerateAccessToken(id, "x@example.com")
		require.NoError(t, err)
		return tok
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "not-a-jwt").Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := jwt.GenerateRefreshToken(ownerID, "x@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(r, refresh).Code)
	})

	t.Run("account without profile", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, token(orphanID)).Code)
	})

	t.Run("secretary", func(t *testing.T) {
		w := do(r, token(secID))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"secretary"`)
	})

	t.Run("query token for event streams", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token(ownerID), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticate_ResolverFailureIsInternal(t *testing.T) {
	jwt := newJWT()
	r := newEngine(NewAuthMiddleware(jwt, &stubResolver{err: errors.New("db down")}, &stubEntitlement{}))

	tok, _, err := jwt.GenerateAccessToken(uuid.New(), "x@example.com")
	require.NoError(t, err)

	w := do(r, tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireKind(t *testing.T) {
	jwt := newJWT()
	secID := uuid.New()
	m := NewAuthMiddleware(jwt, &stubResolver{principals: map[uuid.UUID]*model.Principal{secID: secretary(secID)}}, &stubEntitlement{})
	r := newEngine(m, m.RequireKind(model.PrincipalAnesthesiologist))

	tok, _, err := jwt.GenerateAccessToken(secID, "bia@example.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, tok).Code)
}

func TestRequireEntitlement(t *testing.T) {
	jwt := newJWT()
	ownerID, secID := uuid.New(), uuid.New()
	resolver := &stubResolver{principals: map[uuid.UUID]*model.Principal{
		ownerID: anesthesiologist(ownerID),
		secID:   secretary(secID),
	}}

	t.Run("lapsed owner", func(t *testing.T) {
		ent := &stubEntitlement{access: &model.Access{Reason: "no_subscription"}}
		m := NewAuthMiddleware(jwt, resolver, ent)
		r := newEngine(m, m.RequireEntitlement())

		tok, _, err := jwt.GenerateAccessToken(ownerID, "ana@example.com")
		require.NoError(t, err)
		w := do(r, tok)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "no_subscription")
	})

	t.Run("secretary skips the check", func(t *testing.T) {
		ent := &stubEntitlement{access: &model.Access{}}
		m := NewAuthMiddleware(jwt, resolver, ent)
		r := newEngine(m, m.RequireEntitlement())

		tok, _, err := jwt.GenerateAccessToken(secID, "bia@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, do(r, tok).Code)
		assert.Zero(t, ent.calls)
	})
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 1})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig([]string{"https://app.anesteasy.com.br"})))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://app.anesteasy.com.br")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.anesteasy.com.br", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	assert.Equal(t, http.StatusForbidden, preflight("https://evil.example").Code)
}

func TestErrorHandler_WritesRecordedError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}
