package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/usersvc/internal/metrics"
	"github.com/hitoshi/usersvc/internal/model"
	"github.com/hitoshi/usersvc/internal/token"
)

const routerTestSecret = "router-test-secret-32bytes-long!"

// newTestRouter は実トークンコーデックとモックサービスでルーターを構成する。
func newTestRouter(t *testing.T) (http.Handler, *token.Codec) {
	t.Helper()

	codec, err := token.NewCodec(routerTestSecret, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	deps := &RouterDeps{
		CORSAllowedOrigin:   "http://localhost:3000",
		Logger:              slog.New(slog.NewJSONHandler(io.Discard, nil)),
		TokenVerifier:       codec,
		Metrics:             metrics.NewCollector(reg),
		Gatherer:            reg,
		AuthService:         &mockAuthService{},
		RegistrationService: &mockRegistrationService{},
		UserService:         &mockUserService{},
		HealthChecks:        map[string]CheckFunc{},
	}
	return NewRouter(deps), codec
}

func issueToken(t *testing.T, codec *token.Codec, role model.Role) string {
	t.Helper()
	tok, err := codec.Issue("jean@test.com", "user-1", role)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return tok
}

func TestRouter_HealthAndMetrics_NoAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

func TestRouter_AuthEndpoints_Exempt(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"jean@test.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("login: status = %d, want %d\n%s", w.Code, http.StatusOK, w.Body.String())
	}
}

// 登録は/api/auth/registerと/api/users/registerの両方から到達できる。
func TestRouter_RegisterReachableFromBothPaths(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Jean Dupont","email":"jean@test.com","password":"secret1"}`
	for _, path := range []string{"/api/auth/register", "/api/users/register"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("%s: status = %d, want %d\n%s", path, w.Code, http.StatusCreated, w.Body.String())
		}
	}
}

func TestRouter_Me_WithValidToken(t *testing.T) {
	router, codec := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, model.RoleUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\n%s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := w.Result().Header.Get("X-User-Id"); got != "user-1" {
		t.Errorf("X-User-Id = %q, want user-1", got)
	}
}

func TestRouter_Me_WithoutToken_Returns401(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_Me_WithTamperedToken_Returns401(t *testing.T) {
	router, codec := newTestRouter(t)

	tok := issueToken(t, codec, model.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok+"x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// 管理者専用ルートはUSERロールのトークンでは403になる。
func TestRouter_AdminRoutes_RejectRegularUser(t *testing.T) {
	router, codec := newTestRouter(t)
	userToken := issueToken(t, codec, model.RoleUser)
	adminToken := issueToken(t, codec, model.RoleAdmin)

	adminPaths := []string{
		"/api/users",
		"/api/users/search?name=jean",
		"/api/users/stats",
		"/api/users/role/USER",
	}

	for _, path := range adminPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("user %s: status = %d, want %d", path, w.Code, http.StatusForbidden)
		}

		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("admin %s: status = %d, want %d\n%s", path, w.Code, http.StatusOK, w.Body.String())
		}
	}
}

func TestRouter_InternalEndpoint_NoToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/internal/user-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d\n%s", w.Code, http.StatusOK, w.Body.String())
	}
}

// 認証不要のルートは、期限切れ等の不正なトークンが付いていても提供される。
// 不正なトークンはミドルウェアで拒否されず、匿名リクエストとして扱われる。
func TestRouter_InternalEndpoint_InvalidToken_StillServes(t *testing.T) {
	router, codec := newTestRouter(t)

	tok := issueToken(t, codec, model.RoleUser)
	for name, header := range map[string]string{
		"tampered bearer": "Bearer " + tok + "x",
		"basic scheme":    "Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/internal/user-1", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d\n%s", name, w.Code, http.StatusOK, w.Body.String())
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
