package model

import "time"

// PostLike 帖子点赞集合的一项，主键 (post_id, user_id) 保证同一用户最多一次
type PostLike struct {
	PostID    string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey;type:varchar(36);index:idx_post_like_user"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }

// CommentLike 评论点赞集合的一项
type CommentLike struct {
	CommentID string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey;type:varchar(36);index:idx_comment_like_user"`
	CreatedAt time.Time
}

func (CommentLike) TableName() string { return "comment_likes" }
