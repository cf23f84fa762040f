package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合全部仓储；InTx 内得到绑定同一事务的副本
type Store struct {
	db          *gorm.DB
	Users       UserRepository
	Friendships FriendshipRepository
	Posts       PostRepository
	Likes       LikeRepository
	Outbox      OutboxRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Friendships: NewFriendshipRepository(db),
		Posts:       NewPostRepository(db),
		Likes:       NewLikeRepository(db),
		Outbox:      NewOutboxRepository(db),
	}
}

// InTx 在单个事务中执行 fn，fn 返回错误时整体回滚
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB 暴露底层连接（健康检查用）
func (s *Store) DB() *gorm.DB { return s.db }
