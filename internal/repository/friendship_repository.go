package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/model"
)

// FriendshipRepository 所有读写都走规范化后的 (min,max) 键，
// 等价于同时查询 (A,B) 与 (B,A) 两个方向
type FriendshipRepository interface {
	Create(ctx context.Context, userA, userB string) error
	Delete(ctx context.Context, userA, userB string) (bool, error)
	Exists(ctx context.Context, userA, userB string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create 唯一索引冲突时返回 gorm.ErrDuplicatedKey
func (r *friendshipRepository) Create(ctx context.Context, userA, userB string) error {
	a, b := model.CanonicalPair(userA, userB)
	f := &model.Friendship{ID: model.NewID(), UserA: a, UserB: b}
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *friendshipRepository) Delete(ctx context.Context, userA, userB string) (bool, error) {
	a, b := model.CanonicalPair(userA, userB)
	res := r.db.WithContext(ctx).
		Where("user_a = ? AND user_b = ?", a, b).
		Delete(&model.Friendship{})
	return res.RowsAffected > 0, res.Error
}

func (r *friendshipRepository) Exists(ctx context.Context, userA, userB string) (bool, error) {
	a, b := model.CanonicalPair(userA, userB)
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("user_a = ? AND user_b = ?", a, b).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *friendshipRepository) ListByUser(ctx context.Context, userID string) ([]*model.Friendship, error) {
	var res []*model.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Find(&res).Error
	return res, err
}
