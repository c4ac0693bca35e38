// Package seed は開発・デモ用の初期アカウント投入を提供する。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/usersvc/internal/model"
	"github.com/hitoshi/usersvc/internal/password"
	"github.com/hitoshi/usersvc/internal/repository"
)

// Account は投入する初期アカウントの定義。
type Account struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// DefaultAccounts は開発環境向けの初期アカウント一覧を返す。
// 本番投入を想定したものではない。
func DefaultAccounts() []Account {
	return []Account{
		{Name: "Administrateur", Email: "admin@microcommerce.com", Password: "admin123", Role: model.RoleAdmin},
		{Name: "Jean Dupont", Email: "jean.dupont@microcommerce.com", Password: "password123", Role: model.RoleUser},
		{Name: "Marie Martin", Email: "marie.martin@microcommerce.com", Password: "password123", Role: model.RoleUser},
	}
}

// Seeder は初期アカウントをストアへ投入する。
type Seeder struct {
	users  repository.UserRepository
	hasher password.Hasher
}

// NewSeeder はSeederを生成する。
func NewSeeder(users repository.UserRepository, hasher password.Hasher) *Seeder {
	return &Seeder{
		users:  users,
		hasher: hasher,
	}
}

// Run は指定されたアカウントを投入する。
// 既に登録済みのメールアドレスはスキップするため、何度実行しても安全。
func (s *Seeder) Run(ctx context.Context, accounts []Account) error {
	for _, acc := range accounts {
		exists, err := s.users.ExistsByEmail(ctx, acc.Email)
		if err != nil {
			return fmt.Errorf("failed to check existence of %s: %w", acc.Email, err)
		}
		if exists {
			slog.Info("seed account already exists, skipping",
				slog.String("email", acc.Email),
			)
			continue
		}

		digest, err := s.hasher.Hash(acc.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", acc.Email, err)
		}

		now := time.Now()
		user := &model.User{
			ID:           uuid.New().String(),
			Name:         acc.Name,
			Email:        acc.Email,
			PasswordHash: digest,
			Role:         acc.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create seed account %s: %w", acc.Email, err)
		}

		slog.Info("seed account created",
			slog.String("email", acc.Email),
			slog.String("role", string(acc.Role)),
		)
	}

	return nil
}
