// Package middleware はHTTPリクエスト処理の横断的関心事を提供する。
package middleware

import (
	"context"

	"github.com/hitoshi/usersvc/internal/model"
)

// contextKey はコンテキストキーの衝突を防ぐための非公開型。
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal は認証済みプリンシパルをコンテキストに載せる。
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext はコンテキストからプリンシパルを取り出す。
// 未認証リクエストではnil, falseを返す。
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
