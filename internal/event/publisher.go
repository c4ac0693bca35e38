// Package event はRedis Pub/Subによるサービス間イベントの発行と受信を提供する。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/usersvc/internal/metrics"
	"github.com/hitoshi/usersvc/internal/model"
)

// テストから現在時刻を差し替えるためのフック。
var timeNow = time.Now

// Publisher はユーザー変更イベントをRedisチャンネルへ発行する。
// チャンネル名は<prefix>.created / <prefix>.updated / <prefix>.deleted。
type Publisher struct {
	client  *redis.Client
	prefix  string
	metrics metrics.Recorder
}

// NewPublisher はPublisherを生成する。
func NewPublisher(client *redis.Client, prefix string, recorder metrics.Recorder) *Publisher {
	return &Publisher{
		client:  client,
		prefix:  prefix,
		metrics: recorder,
	}
}

// PublishUserCreated はユーザー作成イベントを発行する。
func (p *Publisher) PublishUserCreated(ctx context.Context, user *model.User) error {
	return p.publish(ctx, p.prefix+".created", model.NewUserEvent(user, model.UserEventCreated))
}

// PublishUserUpdated はユーザー更新イベントを発行する。
func (p *Publisher) PublishUserUpdated(ctx context.Context, user *model.User) error {
	return p.publish(ctx, p.prefix+".updated", model.NewUserEvent(user, model.UserEventUpdated))
}

// PublishUserDeleted はユーザー削除イベントを発行する。
// 削除済みユーザーの個人情報は載せず、IDのみ通知する。
func (p *Publisher) PublishUserDeleted(ctx context.Context, userID string) error {
	evt := model.UserEvent{
		UserID:    userID,
		EventType: model.UserEventDeleted,
		Timestamp: timeNow(),
	}
	return p.publish(ctx, p.prefix+".deleted", evt)
}

func (p *Publisher) publish(ctx context.Context, channel string, evt model.UserEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	p.metrics.RecordEventPublished(channel)
	return nil
}
