package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, offset, limit int) ([]*model.Post, error)
	CreateComment(ctx context.Context, c *model.Comment) error
	FindComment(ctx context.Context, id string) (*model.Comment, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

// withAggregate 预加载点赞集合与按插入顺序排列的评论
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, user_id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, user_id ASC") })
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Omit("Likes", "Comments").Create(p).Error
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := withAggregate(r.db.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List 按创建时间倒序分页
func (r *postRepository) List(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := withAggregate(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit("Likes").Create(c).Error
}

// FindComment 仅凭评论 ID 定位，结果带 PostID
func (r *postRepository) FindComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, user_id ASC") }).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
