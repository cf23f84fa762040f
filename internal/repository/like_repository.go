package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialhub/internal/model"
)

// ErrToggleContention 多次重试后仍无法确定翻转方向
var ErrToggleContention = errors.New("like toggle contention")

const toggleAttempts = 3

// LikeRepository 点赞集合的条件翻转：存在则删、不存在则插
type LikeRepository interface {
	TogglePost(ctx context.Context, postID, userID string) (liked bool, err error)
	ToggleComment(ctx context.Context, commentID, userID string) (liked bool, err error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) TogglePost(ctx context.Context, postID, userID string) (bool, error) {
	return r.toggle(ctx,
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PostLike{PostID: postID, UserID: userID})
		},
	)
}

func (r *likeRepository) ToggleComment(ctx context.Context, commentID, userID string) (bool, error) {
	return r.toggle(ctx,
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&model.CommentLike{})
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.CommentLike{CommentID: commentID, UserID: userID})
		},
	)
}

// toggle 每一步都是单条条件语句：删除命中即为取消点赞；
// 否则插入（冲突则忽略），插入命中即为点赞；两者都未命中说明并发插入抢先，重试删除。
// 调用方负责把它放进事务。
func (r *likeRepository) toggle(ctx context.Context, remove, add func(tx *gorm.DB) *gorm.DB) (bool, error) {
	db := r.db.WithContext(ctx)
	for i := 0; i < toggleAttempts; i++ {
		res := remove(db)
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			return false, nil
		}
		res = add(db)
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			return true, nil
		}
	}
	return false, ErrToggleContention
}
