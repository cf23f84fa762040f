package model

import "time"

// Comment 属于某个 Post；PostID 上的索引即 comment → post 的反查索引
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_comment_post_created,priority:1"`
	AuthorID  string    `gorm:"type:varchar(36);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created,priority:2"`
	UpdatedAt time.Time

	Likes []CommentLike `gorm:"foreignKey:CommentID"`
}

func (Comment) TableName() string { return "comments" }
