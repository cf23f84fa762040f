package model

import "time"

const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)

// OutboxEvent 与业务写入同事务落地的领域事件，由 relay 异步投递
type OutboxEvent struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Type        string    `gorm:"type:varchar(64);not null;index"`
	AggregateID string    `gorm:"type:varchar(36);not null;index:idx_outbox_aggregate"`
	ActorID     string    `gorm:"type:varchar(36)"`
	Payload     string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(16);not null;index:idx_outbox_status_created,priority:1"`
	Attempts    int       `gorm:"not null;default:0"`
	ClaimedAt   *time.Time
	CreatedAt   time.Time `gorm:"index:idx_outbox_status_created,priority:2"`
	ProcessedAt *time.Time
}

func (OutboxEvent) TableName() string { return "outbox_events" }
