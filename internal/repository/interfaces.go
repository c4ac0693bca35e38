// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/usersvc/internal/model"
)

// UserRepository はユーザーアカウントの永続化インターフェース。
// メールアドレスの一意性はストア側（ユニークインデックス）で保証する。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// 照合は格納時の表記どおり（大文字小文字を区別する）。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail は指定メールアドレスのユーザーが存在するかを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複している場合はDUPLICATE_EMAILエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの名前・メールアドレス・パスワードハッシュ・ロールを更新する。
	// メールアドレスが他ユーザーと衝突する場合はDUPLICATE_EMAILエラーを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 対象が存在しない場合はUSER_NOT_FOUNDエラーを返す。
	DeleteByID(ctx context.Context, id string) error

	// List は全ユーザーを作成日時の昇順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// SearchByName は名前の部分一致（大文字小文字を区別しない）でユーザーを検索する。
	SearchByName(ctx context.Context, name string) ([]*model.User, error)

	// ListByRole は指定ロールのユーザー一覧を返す。
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)

	// Count は全ユーザー数を返す。
	Count(ctx context.Context) (int64, error)

	// CountByRole は指定ロールのユーザー数を返す。
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}
