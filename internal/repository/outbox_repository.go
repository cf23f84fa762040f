package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialhub/internal/model"
)

type OutboxRepository interface {
	Append(ctx context.Context, e *model.OutboxEvent) error
	ClaimPending(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*model.OutboxEvent, error)
	MarkDone(ctx context.Context, ids []string, at time.Time) error
	Release(ctx context.Context, id string) error
	Unclaim(ctx context.Context, ids []string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type outboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) Append(ctx context.Context, e *model.OutboxEvent) error {
	if e.ID == "" {
		e.ID = model.NewID()
	}
	if e.Status == "" {
		e.Status = model.OutboxPending
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// ClaimPending 领取一批 pending 事件并标记为 processing。
// 领取超过 lease 仍未完成的 processing 行视为 relay 已失联，一并重新领取。
// Postgres 下使用 FOR UPDATE SKIP LOCKED，多个 worker 不会领到同一行；SQLite 忽略行锁。
func (r *outboxRepository) ClaimPending(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*model.OutboxEvent, error) {
	var batch []*model.OutboxEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? OR (status = ? AND claimed_at < ?)", model.OutboxPending, model.OutboxProcessing, now.Add(-lease)).
			Order("created_at ASC, id ASC").
			Limit(limit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, e := range batch {
			ids[i] = e.ID
			e.Status = model.OutboxProcessing
			e.ClaimedAt = &now
		}
		return tx.Model(&model.OutboxEvent{}).Where("id IN ?", ids).
			Updates(map[string]any{"status": model.OutboxProcessing, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": at}).Error
}

// Release 投递失败，放回 pending 并累计尝试次数
func (r *outboxRepository) Release(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxPending, "attempts": gorm.Expr("attempts + 1"), "claimed_at": nil}).Error
}

// Unclaim 未尝试投递的行直接放回 pending，不计入尝试次数
func (r *outboxRepository) Unclaim(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id IN ? AND status = ?", ids, model.OutboxProcessing).
		Updates(map[string]any{"status": model.OutboxPending, "claimed_at": nil}).Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.OutboxEvent{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
