// Package chat 基于 Redis pub/sub 的聊天室广播，不做消息持久化
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/internal/metrics"
	"github.com/d60-Lab/socialhub/pkg/logger"
)

var (
	ErrEmptyText   = errors.New("message text is empty")
	ErrInvalidRoom = errors.New("invalid room")
	ErrNoBroker    = errors.New("chat broker not configured")
)

type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// 消息类别
const (
	KindText = "message"
	KindJoin = "join"
)

type Message struct {
	Kind   string    `json:"kind"`
	Room   string    `json:"room"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// Hub 每个房间对应一个 Redis 频道 chat:<room>
type Hub struct {
	rdb    *redis.Client
	buffer int
	now    func() time.Time
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{rdb: rdb, buffer: 64, now: time.Now}
}

func channel(room string) string { return "chat:" + room }

func validRoom(room string) bool {
	return room != "" && len(room) <= 64 && !strings.ContainsAny(room, "*?[] ")
}

// Publish 广播一条消息，返回补全了房间与时间的消息
func (h *Hub) Publish(ctx context.Context, room string, from Sender, text string) (*Message, error) {
	if h.rdb == nil {
		return nil, ErrNoBroker
	}
	if !validRoom(room) {
		return nil, ErrInvalidRoom
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	msg := &Message{Kind: KindText, Room: room, Sender: from, Text: text, SentAt: h.now()}
	if err := h.broadcast(ctx, msg); err != nil {
		return nil, err
	}
	metrics.ChatMessages.Inc()
	return msg, nil
}

// Join 向房间内所有订阅者（包括加入者自己）广播加入通知
func (h *Hub) Join(ctx context.Context, room string, who Sender) error {
	if h.rdb == nil {
		return ErrNoBroker
	}
	if !validRoom(room) {
		return ErrInvalidRoom
	}
	return h.broadcast(ctx, &Message{Kind: KindJoin, Room: room, Sender: who, SentAt: h.now()})
}

func (h *Hub) broadcast(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, channel(msg.Room), body).Err()
}

// Subscribe 订阅房间；订阅确认后才返回，ctx 取消或调用 close 时通道关闭
func (h *Hub) Subscribe(ctx context.Context, room string) (<-chan Message, func(), error) {
	if h.rdb == nil {
		return nil, nil, ErrNoBroker
	}
	if !validRoom(room) {
		return nil, nil, ErrInvalidRoom
	}
	sub := h.rdb.Subscribe(ctx, channel(room))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Message, h.buffer)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				var m Message
				if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
					logger.Warn("drop malformed chat message", zap.String("room", room), zap.Error(err))
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
