// Package token は署名付きベアラートークンの発行と解析を提供する。
// 署名と有効期限の判定はこのパッケージだけが行う。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/usersvc/internal/model"
)

// claims はトークンに埋め込むクレームセット。
// subにはメールアドレスを格納する。
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Codec はHS256で署名されたJWTを発行・検証する。
// 署名鍵と有効期間は構築時に固定され、以後すべての操作は
// 入力と現在時刻のみの純粋関数となる（ロック不要）。
type Codec struct {
	secret   []byte
	lifetime time.Duration
	nowFn    func() time.Time
}

// NewCodec はCodecを生成する。
// 署名鍵が空の場合はエラーを返す。プロセスは署名鍵なしで起動してはならない。
func NewCodec(secret string, lifetime time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if lifetime <= 0 {
		return nil, errors.New("token: lifetime must be positive")
	}
	return &Codec{
		secret:   []byte(secret),
		lifetime: lifetime,
		nowFn:    time.Now,
	}, nil
}

// Issue は指定された主体情報を持つ署名済みトークン文字列を発行する。
// 有効期限は発行時刻 + 固定の有効期間。
func (c *Codec) Issue(email, userID string, role model.Role) (string, error) {
	now := c.nowFn()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
		UserID: userID,
		Role:   string(role),
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate はトークンの有効性を判定する。
// 署名が検証でき、有効期限内で、必須クレーム（sub, userId, role）が
// 揃っている場合にのみtrueを返す。解析失敗を含むあらゆる異常はfalseになる。
func (c *Codec) Validate(tokenString string) bool {
	parsed := &claims{}
	t, err := jwt.ParseWithClaims(tokenString, parsed,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowFn),
	)
	if err != nil || !t.Valid {
		return false
	}
	return parsed.Subject != "" && parsed.UserID != "" && parsed.Role != ""
}

// Subject はトークンから主体（メールアドレス）を取り出す。
// 署名の有効性は再検証しない。呼び出し元は先にValidateを呼ぶこと。
func (c *Codec) Subject(tokenString string) (string, error) {
	parsed, err := c.parseUnverified(tokenString)
	if err != nil {
		return "", err
	}
	if parsed.Subject == "" {
		return "", model.NewMalformedTokenError()
	}
	return parsed.Subject, nil
}

// UserID はトークンからユーザーIDクレームを取り出す。
func (c *Codec) UserID(tokenString string) (string, error) {
	parsed, err := c.parseUnverified(tokenString)
	if err != nil {
		return "", err
	}
	if parsed.UserID == "" {
		return "", model.NewMalformedTokenError()
	}
	return parsed.UserID, nil
}

// Role はトークンからロールクレームを取り出す。
func (c *Codec) Role(tokenString string) (model.Role, error) {
	parsed, err := c.parseUnverified(tokenString)
	if err != nil {
		return "", err
	}
	if parsed.Role == "" {
		return "", model.NewMalformedTokenError()
	}
	return model.Role(parsed.Role), nil
}

// parseUnverified は署名検証なしでクレームを解析する。
// 解析不能なトークンにはMALFORMED_TOKENエラーを返す。
func (c *Codec) parseUnverified(tokenString string) (*claims, error) {
	parsed := &claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, parsed); err != nil {
		return nil, model.NewMalformedTokenError()
	}
	return parsed, nil
}
