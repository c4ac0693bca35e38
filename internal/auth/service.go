// Package auth は認証情報の検証とトークンのライフサイクル管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/usersvc/internal/model"
	"github.com/hitoshi/usersvc/internal/password"
	"github.com/hitoshi/usersvc/internal/repository"
)

// TokenCodec は認証サービスが必要とするトークン操作のインターフェース。
// 実装はinternal/tokenパッケージが提供する。
type TokenCodec interface {
	// Issue は署名済みトークンを発行する。
	Issue(email, userID string, role model.Role) (string, error)
	// Validate はトークンの有効性を判定する。
	Validate(tokenString string) bool
	// Subject はトークンの主体（メールアドレス）を取り出す。
	Subject(tokenString string) (string, error)
}

// LoginResult はログイン・リフレッシュ成功時に返す情報。
// パスワードハッシュは決して含めない。
type LoginResult struct {
	Token  string
	UserID string
	Email  string
	Name   string
	Role   model.Role
}

// Service は認証に関するビジネスロジックを提供する。
// 共有可変状態を持たないため、複数リクエストから並行に呼び出せる。
type Service struct {
	users  repository.UserRepository
	hasher password.Hasher
	codec  TokenCodec
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, hasher password.Hasher, codec TokenCodec) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
	}
}

// Login はメールアドレスとパスワードで認証し、トークンを発行する。
// 未登録メールとパスワード不一致は呼び出し元から区別できないよう、
// どちらも同一のINVALID_CREDENTIALSエラーを返す。
// 平文パスワードはログにも戻り値にも含めない。
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, model.NewInvalidCredentialsError()
	}

	tok, err := s.codec.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		Token:  tok,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}

// ValidateToken はトークンの有効性を判定する。
// 内部のあらゆる失敗はfalseに畳み込み、エラーを外に出さない。
func (s *Service) ValidateToken(tokenString string) bool {
	return s.codec.Validate(tokenString)
}

// RefreshToken は有効なトークンから新しいトークンを発行する。
// クレームは発行時点のアカウント情報から再取得するため、
// リフレッシュでロール変更が反映される。
// 旧トークンは無効化しない（ステートレス設計に固有の挙動）。
func (s *Service) RefreshToken(ctx context.Context, tokenString string) (*LoginResult, error) {
	if !s.codec.Validate(tokenString) {
		return nil, model.NewInvalidTokenError()
	}

	email, err := s.codec.Subject(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return nil, model.NewAccountNotFoundError()
	}

	newTok, err := s.codec.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("token refreshed",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		Token:  newTok,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}
