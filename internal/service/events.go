package service

import (
	"encoding/json"
	"time"

	"github.com/d60-Lab/socialhub/internal/model"
)

// 领域事件类型，随业务写入同事务进入 outbox
const (
	EventUserCreated       = "user.created"
	EventFriendshipAdded   = "friendship.added"
	EventFriendshipRemoved = "friendship.removed"
	EventPostCreated       = "post.created"
	EventCommentCreated    = "comment.created"
	EventLikeToggled       = "like.toggled"
)

func newEvent(typ, aggregateID, actorID string, at time.Time, payload any) (*model.OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &model.OutboxEvent{
		ID:          model.NewID(),
		Type:        typ,
		AggregateID: aggregateID,
		ActorID:     actorID,
		Payload:     string(body),
		Status:      model.OutboxPending,
		CreatedAt:   at,
	}, nil
}
