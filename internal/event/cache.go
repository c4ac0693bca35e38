package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/usersvc/internal/model"
)

// productCacheKeyPrefix は商品キャッシュのRedisキープレフィックス。
const productCacheKeyPrefix = "usersvc:product:"

// CachedProduct はイベント経由で同期する商品情報のローカルコピー。
type CachedProduct struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductCache は商品イベントから維持するTTL付きキャッシュ。
// 正本はproduct-serviceにあり、ここは参照用のコピーに過ぎない。
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache はProductCacheを生成する。
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

// Store は商品イベントの内容をキャッシュへ保存する。
func (c *ProductCache) Store(ctx context.Context, evt *model.ProductEvent) error {
	entry := CachedProduct{
		ProductID: evt.ProductID,
		Name:      evt.Name,
		Price:     evt.Price,
		Stock:     evt.Stock,
		UpdatedAt: evt.Timestamp,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached product: %w", err)
	}
	if err := c.client.Set(ctx, productCacheKeyPrefix+evt.ProductID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store product %s: %w", evt.ProductID, err)
	}
	return nil
}

// Get はキャッシュ済み商品を取得する。未キャッシュまたは期限切れの場合はnilを返す。
func (c *ProductCache) Get(ctx context.Context, productID string) (*CachedProduct, error) {
	payload, err := c.client.Get(ctx, productCacheKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	var entry CachedProduct
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &entry, nil
}

// Delete は商品をキャッシュから削除する。存在しないキーの削除はエラーにしない。
func (c *ProductCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, productCacheKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", productID, err)
	}
	return nil
}
