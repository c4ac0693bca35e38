package event

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/usersvc/internal/model"
)

func TestProductCache_StoreAndGet(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewProductCache(client, time.Hour)
	ctx := context.Background()

	evt := &model.ProductEvent{
		ProductID: "prod-1",
		Name:      "Clavier mécanique",
		Price:     89.9,
		Stock:     12,
		EventType: model.ProductEventCreated,
		Timestamp: time.Now(),
	}
	if err := cache.Store(ctx, evt); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := cache.Get(ctx, "prod-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cached product, got nil")
	}
	if got.Name != "Clavier mécanique" || got.Price != 89.9 || got.Stock != 12 {
		t.Errorf("unexpected cached product: %+v", got)
	}
}

func TestProductCache_Get_Missing_ReturnsNil(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewProductCache(client, time.Hour)

	got, err := cache.Get(context.Background(), "no-such-product")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing product, got %+v", got)
	}
}

func TestProductCache_Delete(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewProductCache(client, time.Hour)
	ctx := context.Background()

	evt := &model.ProductEvent{ProductID: "prod-1", Name: "Souris"}
	if err := cache.Store(ctx, evt); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Delete(ctx, "prod-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := cache.Get(ctx, "prod-1")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// 存在しないキーの削除はエラーにならない
	if err := cache.Delete(ctx, "prod-1"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

// TTL経過後はキャッシュが消える。
func TestProductCache_ExpiresAfterTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewProductCache(client, time.Minute)
	ctx := context.Background()

	evt := &model.ProductEvent{ProductID: "prod-1", Name: "Écran"}
	if err := cache.Store(ctx, evt); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "prod-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after TTL expiry, got %+v", got)
	}
}
