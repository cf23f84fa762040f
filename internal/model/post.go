package model

import "time"

// Post 内容聚合根，拥有点赞集合与有序评论
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index:idx_post_author"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
	UpdatedAt time.Time

	Likes    []PostLike `gorm:"foreignKey:PostID"`
	Comments []Comment  `gorm:"foreignKey:PostID"`
}

func (Post) TableName() string { return "posts" }
