// Package model はドメインモデルを定義する。
package model

import "time"

// UserEventType はユーザーイベントの種別を表す。
type UserEventType string

const (
	// UserEventCreated はユーザー作成イベントを示す。
	UserEventCreated UserEventType = "CREATED"
	// UserEventUpdated はユーザー更新イベントを示す。
	UserEventUpdated UserEventType = "UPDATED"
	// UserEventDeleted はユーザー削除イベントを示す。
	UserEventDeleted UserEventType = "DELETED"
)

// UserEvent はユーザーの作成・更新・削除を他サービスへ通知するイベント。
// JSONフィールド名は他サービスとの契約のため変更しない。
type UserEvent struct {
	UserID    string        `json:"userId"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Role      Role          `json:"role,omitempty"`
	EventType UserEventType `json:"eventType"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewUserEvent はUserからユーザーイベントを生成する。
func NewUserEvent(u *User, eventType UserEventType) UserEvent {
	return UserEvent{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// ProductEventType は商品イベントの種別を表す。
type ProductEventType string

const (
	// ProductEventCreated は商品作成イベントを示す。
	ProductEventCreated ProductEventType = "CREATED"
	// ProductEventUpdated は商品更新イベントを示す。
	ProductEventUpdated ProductEventType = "UPDATED"
	// ProductEventDeleted は商品削除イベントを示す。
	ProductEventDeleted ProductEventType = "DELETED"
)

// ProductEvent はproduct-serviceから受信する商品イベント。
// ローカルの商品キャッシュ維持に使用する。
type ProductEvent struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name,omitempty"`
	Price     float64          `json:"price,omitempty"`
	Stock     int              `json:"stock,omitempty"`
	EventType ProductEventType `json:"eventType"`
	Timestamp time.Time        `json:"timestamp"`
}

// 注文イベントの種別。order-serviceが送出する文字列と一致させる。
const (
	OrderEventCreated       = "ORDER_CREATED"
	OrderEventStatusUpdated = "ORDER_STATUS_UPDATED"
	OrderEventCancelled     = "ORDER_CANCELLED"
	OrderEventDeleted       = "ORDER_DELETED"
)

// OrderEvent はorder-serviceから受信する注文イベント。
type OrderEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount float64   `json:"totalAmount,omitempty"`
	Status      string    `json:"status,omitempty"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
}
