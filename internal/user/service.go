// Package user はユーザーアカウントのCRUDとプロフィール管理を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/usersvc/internal/model"
	"github.com/hitoshi/usersvc/internal/password"
	"github.com/hitoshi/usersvc/internal/repository"
)

// TokenIssuer は登録完了時のトークン発行に必要なインターフェース。
type TokenIssuer interface {
	Issue(email, userID string, role model.Role) (string, error)
}

// EventPublisher はユーザー変更イベントの発行インターフェース。
// 実装はinternal/eventパッケージが提供する。
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user *model.User) error
	PublishUserUpdated(ctx context.Context, user *model.User) error
	PublishUserDeleted(ctx context.Context, userID string) error
}

// RegisterResult は登録成功時に返す情報。ログインと同じ形でトークンを含む。
type RegisterResult struct {
	Token string
	User  *model.User
}

// Stats はユーザー統計情報。
type Stats struct {
	TotalUsers   int64
	AdminUsers   int64
	RegularUsers int64
}

// Service はユーザー管理のビジネスロジックを提供する。
type Service struct {
	users  repository.UserRepository
	hasher password.Hasher
	issuer TokenIssuer
	events EventPublisher
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	hasher password.Hasher,
	issuer TokenIssuer,
	events EventPublisher,
) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		events: events,
	}
}

// Register は新規ユーザーを登録し、トークンを発行する。
// ロールはUSER固定。メールアドレスが既に登録済みの場合はDUPLICATE_EMAILエラーを返す。
func (s *Service) Register(ctx context.Context, name, email, plaintext string) (*RegisterResult, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(plaintext); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, model.NewDuplicateEmailError()
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 存在チェックと挿入の間の競合はストアのユニークインデックスが防ぐ
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvent(func() error { return s.events.PublishUserCreated(ctx, user) }, user.ID, "user.created")

	tok, err := s.issuer.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return &RegisterResult{Token: tok, User: user}, nil
}

// GetByID は指定IDのユーザーを取得する。
func (s *Service) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// GetByEmail は指定メールアドレスのユーザーを取得する。
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(email)
	}
	return user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SearchByName は名前の部分一致でユーザーを検索する。
func (s *Service) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	users, err := s.users.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// ListByRole は指定ロールのユーザー一覧を返す。
func (s *Service) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	if !role.IsValid() {
		return nil, model.NewValidationError("ロールはUSERまたはADMINを指定してください")
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// Stats はユーザー統計（総数、ロール別の内訳）を返す。
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to count admin users: %w", err)
	}
	regulars, err := s.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to count regular users: %w", err)
	}
	return &Stats{TotalUsers: total, AdminUsers: admins, RegularUsers: regulars}, nil
}

// Update はユーザーの名前・メールアドレス・パスワードを更新する。
// パスワードが空の場合は変更しない。
// 更新後にuser.updatedイベントを発行する。
func (s *Service) Update(ctx context.Context, id, name, email, plaintext string) (*model.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	// 別アカウントが使用中のメールアドレスへの変更は拒否する
	if email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return nil, model.NewDuplicateEmailError()
		}
	}

	user.Name = name
	user.Email = email

	if plaintext != "" {
		if err := validatePassword(plaintext); err != nil {
			return nil, err
		}
		digest, err := s.hasher.Hash(plaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = digest
	}

	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvent(func() error { return s.events.PublishUserUpdated(ctx, user) }, user.ID, "user.updated")

	return user, nil
}

// UpdateRole はユーザーのロールを変更する。
// 変更は既発行トークンには反映されず、次回ログインまたはリフレッシュで反映される。
func (s *Service) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if !role.IsValid() {
		return nil, model.NewValidationError("ロールはUSERまたはADMINを指定してください")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	user.Role = role
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvent(func() error { return s.events.PublishUserUpdated(ctx, user) }, user.ID, "user.updated")

	slog.Info("user role updated",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)

	return user, nil
}

// Delete は指定IDのユーザーを削除し、user.deletedイベントを発行する。
func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(id)
	}

	if err := s.users.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publishEvent(func() error { return s.events.PublishUserDeleted(ctx, user.ID) }, user.ID, "user.deleted")

	slog.Info("user deleted",
		slog.String("user_id", user.ID),
	)

	return nil
}

// publishEvent はイベント発行を実行する。
// 発行失敗はログに記録するのみで、呼び出し元の操作は失敗させない。
func (s *Service) publishEvent(publish func() error, userID, channel string) {
	if err := publish(); err != nil {
		slog.Error("failed to publish user event",
			slog.String("user_id", userID),
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// --- 入力値検証 ---

func validateName(name string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(name))
	if length < 2 || length > 100 {
		return model.NewValidationError("名前は2〜100文字で入力してください")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスは必須です")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	return nil
}

func validatePassword(plaintext string) error {
	if len(plaintext) < 6 {
		return model.NewValidationError("パスワードは6文字以上で入力してください")
	}
	return nil
}
