package middleware

import (
	"net/http"
	"strings"

	"github.com/hitoshi/usersvc/internal/model"
)

// TokenVerifier は認証ミドルウェアが必要とするトークン検証のインターフェース。
// 実装はinternal/tokenパッケージが提供する。
type TokenVerifier interface {
	Validate(tokenString string) bool
	Subject(tokenString string) (string, error)
	UserID(tokenString string) (string, error)
	Role(tokenString string) (model.Role, error)
}

// exemptPrefixes は認証をスキップするパスのプレフィックス一覧。
// 認証エンドポイント自身、登録、ヘルスチェック、メトリクスが対象。
var exemptPrefixes = []string{
	"/api/auth/",
	"/api/users/register",
	"/health",
	"/metrics",
}

func isExemptPath(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NewAuthMiddleware はBearerトークンを検証するミドルウェアを返す。
//
// 挙動:
//   - 免除パスはそのまま通す。
//   - Authorizationヘッダーがない、Bearer形式でない、またはトークンが
//     不正・期限切れの場合は匿名のまま通す。ここでは拒否せず、
//     認可の要否は各ハンドラーが判断する。
//   - 有効な場合はPrincipalをコンテキストに載せ、下流サービス向けの
//     X-User-Id / X-User-Role / X-Usernameヘッダーをレスポンスに付与する。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || !verifier.Validate(tokenString) {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := principalFromToken(verifier, tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-User-Id", principal.UserID)
			w.Header().Set("X-User-Role", string(principal.Role))
			w.Header().Set("X-Username", principal.Email)

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func principalFromToken(verifier TokenVerifier, tokenString string) (*model.Principal, error) {
	email, err := verifier.Subject(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := verifier.UserID(tokenString)
	if err != nil {
		return nil, err
	}
	role, err := verifier.Role(tokenString)
	if err != nil {
		return nil, err
	}
	return &model.Principal{
		UserID: userID,
		Email:  email,
		Role:   role,
	}, nil
}
