package service

import (
	"time"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
)

// UserView 对外的用户信息，不含凭据
type UserView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

func NewUserView(u *model.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.AvatarRef}
}

// ProfileView 按 id 查询的公开资料
type ProfileView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CommentView struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	Content   string       `json:"content"`
	User      cache.Author `json:"user"`
	Likes     []string     `json:"likes"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type PostView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	User      cache.Author  `json:"user"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Comment 按 id 取评论视图
func (p *PostView) Comment(id string) *CommentView {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// authorIDs 收集帖子与评论的全部作者
func authorIDs(posts ...*model.Post) []string {
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
		for _, c := range p.Comments {
			ids = append(ids, c.AuthorID)
		}
	}
	return ids
}

func authorOf(authors map[string]cache.Author, id string) cache.Author {
	if a, ok := authors[id]; ok {
		return a
	}
	return cache.Author{ID: id}
}

func newCommentView(c *model.Comment, author cache.Author) CommentView {
	likes := make([]string, len(c.Likes))
	for i, l := range c.Likes {
		likes[i] = l.UserID
	}
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		User:      author,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newPostView(p *model.Post, authors map[string]cache.Author) PostView {
	likes := make([]string, len(p.Likes))
	for i, l := range p.Likes {
		likes[i] = l.UserID
	}
	comments := make([]CommentView, len(p.Comments))
	for i := range p.Comments {
		c := &p.Comments[i]
		comments[i] = newCommentView(c, authorOf(authors, c.AuthorID))
	}
	return PostView{
		ID:        p.ID,
		Content:   p.Content,
		User:      authorOf(authors, p.AuthorID),
		Likes:     likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
