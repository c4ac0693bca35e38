// Package password はパスワードのハッシュ化と照合を提供する。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードの一方向ハッシュ化と照合のインターフェース。
type Hasher interface {
	// Hash は平文パスワードからソルト付きダイジェストを生成する。
	Hash(plaintext string) (string, error)
	// Verify は平文とダイジェストを照合する。
	// ダイジェストが不正な形式の場合もfalseを返し、エラーにはしない。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// コストが範囲外の場合はbcrypt.DefaultCostにフォールバックする。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードからbcryptダイジェストを生成する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文とbcryptダイジェストを照合する。
// bcrypt.CompareHashAndPasswordは定数時間比較を行う。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
