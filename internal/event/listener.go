package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/usersvc/internal/metrics"
	"github.com/hitoshi/usersvc/internal/model"
)

// Listener は他サービスからの商品・注文イベントをパターン購読で受信する。
// 商品イベントはローカルキャッシュの維持に、注文イベントは監査ログに使用する。
// 不正なペイロードはログに記録して読み飛ばす（再試行はしない）。
type Listener struct {
	client      *redis.Client
	cache       *ProductCache
	productGlob string
	orderGlob   string
	metrics     metrics.Recorder
}

// NewListener はListenerを生成する。
func NewListener(client *redis.Client, cache *ProductCache, productGlob, orderGlob string, recorder metrics.Recorder) *Listener {
	return &Listener{
		client:      client,
		cache:       cache,
		productGlob: productGlob,
		orderGlob:   orderGlob,
		metrics:     recorder,
	}
}

// Run は購読を開始し、コンテキストがキャンセルされるまでイベントを処理する。
// 通常はgoroutineで起動する。
func (l *Listener) Run(ctx context.Context) error {
	pubsub := l.client.PSubscribe(ctx, l.productGlob, l.orderGlob)
	defer pubsub.Close()

	// 購読確立を待ってから受信ループに入る
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	slog.Info("event listener started",
		slog.String("product_pattern", l.productGlob),
		slog.String("order_pattern", l.orderGlob),
	)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("event listener stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.dispatch(ctx, msg)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, msg *redis.Message) {
	l.metrics.RecordEventConsumed(msg.Channel)

	switch {
	case strings.HasPrefix(msg.Channel, "product."):
		l.handleProduct(ctx, msg)
	case strings.HasPrefix(msg.Channel, "order."):
		l.handleOrder(msg)
	default:
		slog.Warn("message on unexpected channel",
			slog.String("channel", msg.Channel),
		)
	}
}

func (l *Listener) handleProduct(ctx context.Context, msg *redis.Message) {
	var evt model.ProductEvent
	if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
		slog.Error("failed to decode product event",
			slog.String("channel", msg.Channel),
			slog.String("error", err.Error()),
		)
		return
	}
	if evt.ProductID == "" {
		slog.Error("product event without productId",
			slog.String("channel", msg.Channel),
		)
		return
	}

	switch evt.EventType {
	case model.ProductEventCreated, model.ProductEventUpdated:
		if err := l.cache.Store(ctx, &evt); err != nil {
			slog.Error("failed to cache product",
				slog.String("product_id", evt.ProductID),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("product cache updated",
			slog.String("product_id", evt.ProductID),
			slog.String("event_type", string(evt.EventType)),
		)
	case model.ProductEventDeleted:
		if err := l.cache.Delete(ctx, evt.ProductID); err != nil {
			slog.Error("failed to evict product from cache",
				slog.String("product_id", evt.ProductID),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("product evicted from cache",
			slog.String("product_id", evt.ProductID),
		)
	default:
		slog.Warn("unknown product event type",
			slog.String("event_type", string(evt.EventType)),
		)
	}
}

// handleOrder は注文イベントを監査目的で記録する。
// ユーザーサービス側で状態は持たないため、処理はログのみ。
func (l *Listener) handleOrder(msg *redis.Message) {
	var evt model.OrderEvent
	if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
		slog.Error("failed to decode order event",
			slog.String("channel", msg.Channel),
			slog.String("error", err.Error()),
		)
		return
	}

	switch evt.EventType {
	case model.OrderEventCreated:
		slog.Info("order created for user",
			slog.String("order_id", evt.OrderID),
			slog.String("user_id", evt.UserID),
			slog.Float64("total_amount", evt.TotalAmount),
		)
	case model.OrderEventStatusUpdated:
		slog.Info("order status updated",
			slog.String("order_id", evt.OrderID),
			slog.String("user_id", evt.UserID),
			slog.String("status", evt.Status),
		)
	case model.OrderEventCancelled:
		slog.Info("order cancelled",
			slog.String("order_id", evt.OrderID),
			slog.String("user_id", evt.UserID),
		)
	case model.OrderEventDeleted:
		slog.Info("order deleted",
			slog.String("order_id", evt.OrderID),
			slog.String("user_id", evt.UserID),
		)
	default:
		slog.Warn("unknown order event type",
			slog.String("event_type", evt.EventType),
			slog.String("order_id", evt.OrderID),
		)
	}
}
