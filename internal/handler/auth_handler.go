package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/usersvc/internal/auth"
	"github.com/hitoshi/usersvc/internal/metrics"
	"github.com/hitoshi/usersvc/internal/model"
	"github.com/hitoshi/usersvc/internal/user"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, plaintext string) (*auth.LoginResult, error)
	ValidateToken(tokenString string) bool
	RefreshToken(ctx context.Context, tokenString string) (*auth.LoginResult, error)
}

// RegistrationServiceInterface はユーザー登録のサービスインターフェース。
type RegistrationServiceInterface interface {
	Register(ctx context.Context, name, email, plaintext string) (*user.RegisterResult, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	auth     AuthServiceInterface
	registry RegistrationServiceInterface
	metrics  metrics.Recorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(authSvc AuthServiceInterface, registry RegistrationServiceInterface, recorder metrics.Recorder) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		registry: registry,
		metrics:  recorder,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse はログイン・登録・リフレッシュ成功時のレスポンス。
// Typeは常に"Bearer"で、クライアントがAuthorizationヘッダーを組み立てるのに使う。
type authResponse struct {
	Token  string     `json:"token"`
	Type   string     `json:"type"`
	UserID string     `json:"userId"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
}

const tokenType = "Bearer"

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	return strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// Register は新規ユーザーを登録し、トークンを返す。
// POST /api/auth/register, POST /api/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	result, err := h.registry.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRegistration()
	h.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusCreated, authResponse{
		Token:  result.Token,
		Type:   tokenType,
		UserID: result.User.ID,
		Email:  result.User.Email,
		Name:   result.User.Name,
		Role:   result.User.Role,
	})
}

// Login は認証情報を検証し、トークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLogin(false)
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogin(true)
	h.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusOK, authResponse{
		Token:  result.Token,
		Type:   tokenType,
		UserID: result.UserID,
		Email:  result.Email,
		Name:   result.Name,
		Role:   result.Role,
	})
}

// Validate はAuthorizationヘッダーのトークンの有効性を判定する。
// トークンが渡されていれば、有効・無効にかかわらず200で真偽値を返す。
// POST /api/auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	tok, ok := bearerToken(r)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("AuthorizationヘッダーにBearerトークンがありません"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"valid": h.auth.ValidateToken(tok),
	})
}

// Refresh はAuthorizationヘッダーの有効なトークンから新しいトークンを発行する。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := bearerToken(r)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("AuthorizationヘッダーにBearerトークンがありません"))
		return
	}

	result, err := h.auth.RefreshToken(r.Context(), tok)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTokenRefreshed()
	h.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusOK, authResponse{
		Token:  result.Token,
		Type:   tokenType,
		UserID: result.UserID,
		Email:  result.Email,
		Name:   result.Name,
		Role:   result.Role,
	})
}

// Test は認証サービスの疎通確認用エンドポイント。
// GET /api/auth/test
func (h *AuthHandler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "auth endpoint is available",
	})
}
