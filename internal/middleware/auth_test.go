package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor_id": GetUserID(c), "role": GetUserRole(c)})
	})
	r.GET("/finance", RequireRole(RoleAdmin, RoleFinance), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuth(t *testing.T) {
	valid, err := IssueToken(testSecret, 42, "caja@feria.test", RoleFinance, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, 42, "caja@feria.test", RoleFinance, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := IssueToken("other-secret", 42, "caja@feria.test", RoleFinance, time.Hour)
	require.NoError(t, err)
	noUser, err := IssueToken(testSecret, 0, "caja@feria.test", RoleFinance, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: `{"actor_id":42,"role":"finance"}`},
		{name: "token in query", query: "?token=" + valid, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Authorization header is required"}`},
		{name: "bad scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"token has expired"}`},
		{name: "wrong key", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"invalid token"}`},
		{name: "no user id", header: "Bearer " + noUser, wantStatus: http.StatusUnauthorized},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAuth_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: RoleAdmin})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newAuthRouter()

	for role, want := range map[string]int{
		RoleAdmin:   http.StatusNoContent,
		RoleFinance: http.StatusNoContent,
		RoleAuditor: http.StatusForbidden,
	} {
		token, err := IssueToken(testSecret, 7, "x@feria.test", role, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/finance", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code, role)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
