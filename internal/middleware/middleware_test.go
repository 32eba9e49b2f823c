package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"panaderia/internal/middleware"
	"panaderia/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, secret string, userID uint, rol string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": rol,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func ginTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "rol": claims.Rol})
	})
	r.GET("/admin", middleware.RequireRole(model.RolAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(tok string) map[string]string { return map[string]string{"Authorization": "Bearer " + tok} }

// ── JWT ──────────────────────────────────────────────────────────────────────

func TestJWTAuth(t *testing.T) {
	r := ginTestRouter()

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"sin token", nil, http.StatusUnauthorized},
		{"esquema incorrecto", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"basura", bearer("this.is.garbage"), http.StatusUnauthorized},
		{"valido", bearer(signToken(t, testSecret, 4, model.RolUsuario, time.Hour)), http.StatusOK},
		{"expirado", bearer(signToken(t, testSecret, 4, model.RolUsuario, -time.Second)), http.StatusUnauthorized},
		{"otra clave", bearer(signToken(t, "otra", 4, model.RolUsuario, time.Hour)), http.StatusUnauthorized},
		{"sin usuario", bearer(signToken(t, testSecret, 0, model.RolUsuario, time.Hour)), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(r, "/protected", tc.headers).Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := ginTestRouter()

	w := get(r, "/admin", bearer(signToken(t, testSecret, 2, model.RolUsuario, time.Hour)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/admin", bearer(signToken(t, testSecret, 1, model.RolAdmin, time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ── Rate limiting ────────────────────────────────────────────────────────────

func TestRateLimiter_Rechaza(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middleware.NewRateLimiter(1, 2, middleware.ByIP, "Demasiadas solicitudes")
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", nil).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/", nil).Code)

	w := get(r, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Demasiadas solicitudes")
}

func TestRateLimiter_PorUsuario(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middleware.NewRateLimiter(1, 1, middleware.ByUser, "limite")
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	a := bearer(signToken(t, testSecret, 1, model.RolUsuario, time.Hour))
	b := bearer(signToken(t, testSecret, 2, model.RolUsuario, time.Hour))

	assert.Equal(t, http.StatusNoContent, get(r, "/", a).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", a).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/", b).Code, "separate bucket per user")
}

func TestRateLimiter_Purge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middleware.NewRateLimiter(60, 5, middleware.ByIP, "limite")
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	get(r, "/", nil)

	assert.Zero(t, rl.Purge(time.Hour))
	assert.Equal(t, 1, rl.Purge(-time.Second))
}

// ── Request ID & CORS ────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })

	w := get(r, "/", map[string]string{middleware.RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = get(r, "/", nil)
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	abierto := gin.New()
	abierto.Use(middleware.CORS(nil))
	abierto.GET("/", handler)
	w := get(abierto, "/", map[string]string{"Origin": "http://cualquiera.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restringido := gin.New()
	restringido.Use(middleware.CORS([]string{"http://localhost:3000"}))
	restringido.GET("/", handler)
	w = get(restringido, "/", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = get(restringido, "/", map[string]string{"Origin": "http://evil.test"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
