package model

import "time"

// Friendship 无向好友边，存储时 UserA < UserB
type Friendship struct {
	ID    string `gorm:"primaryKey;type:varchar(36)"`
	UserA string `gorm:"type:varchar(36);not null;index:idx_friendship_pair,unique"`
	UserB string `gorm:"type:varchar(36);not null;index:idx_friendship_pair,unique;index:idx_friendship_user_b"`
	// 复合唯一键 idx_friendship_pair = (user_a, user_b)，(A,B) 与 (B,A) 规范化后是同一行
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Friendship) TableName() string { return "friendships" }

// CanonicalPair 把无序对规范化为 (min, max)
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Other 返回边上不是 userID 的另一端
func (f Friendship) Other(userID string) string {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}
