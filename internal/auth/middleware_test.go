package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newProtectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(CtxSubject)})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, authz string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	r := newProtectedRouter(JWT("secret"))

	if w := doGet(t, r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: code = %d", w.Code)
	}
	if w := doGet(t, r, "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: code = %d", w.Code)
	}
	if w := doGet(t, r, "Basic abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: code = %d", w.Code)
	}

	token, err := SignToken("secret", "user-1", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if w := doGet(t, r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("valid token: code = %d body = %s", w.Code, w.Body.String())
	}
}

func TestServiceTokenMiddleware(t *testing.T) {
	r := newProtectedRouter(ServiceToken("svc-token"))

	if w := doGet(t, r, "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: code = %d", w.Code)
	}
	if w := doGet(t, r, "Bearer svc-token"); w.Code != http.StatusOK {
		t.Errorf("service token: code = %d", w.Code)
	}

	// Пользовательский JWT сервисным эндпоинтом не принимается.
	token, _ := SignToken("secret", "user-1", time.Hour, time.Now())
	if w := doGet(t, r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("jwt on service endpoint: code = %d", w.Code)
	}
}

func TestAnyMiddleware(t *testing.T) {
	r := newProtectedRouter(Any("secret", "svc-token"))

	if w := doGet(t, r, "Bearer svc-token"); w.Code != http.StatusOK {
		t.Errorf("service token: code = %d", w.Code)
	}
	token, _ := SignToken("secret", "user-1", time.Hour, time.Now())
	if w := doGet(t, r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("jwt: code = %d", w.Code)
	}
	if w := doGet(t, r, "Bearer nonsense"); w.Code != http.StatusUnauthorized {
		t.Errorf("nonsense: code = %d", w.Code)
	}
}
