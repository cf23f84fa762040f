package model

import "github.com/google/uuid"

// NewID 生成按时间有序的 UUIDv7 字符串主键
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID 主键格式校验
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// All 需要迁移的全部表
func All() []any {
	return []any{
		&User{},
		&Friendship{},
		&Post{},
		&Comment{},
		&PostLike{},
		&CommentLike{},
		&OutboxEvent{},
	}
}
