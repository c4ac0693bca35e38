// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザーを示す。登録時のデフォルトロール。
	RoleUser Role = "USER"
	// RoleAdmin は管理者を示す。
	RoleAdmin Role = "ADMIN"
)

// IsValid はロールが定義済みの値かどうかを返す。
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User はサービス利用者のアカウントを表す。
// PasswordHashはこのサービスの外には決して出さない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal は検証済みトークンから導出されたリクエスト単位の認証主体を表す。
// リクエストコンテキストに格納し、リクエスト終了とともに破棄する。
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin は主体が管理者ロールを持つかどうかを返す。
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
