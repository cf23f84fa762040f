package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
)

const defaultPageSize = 5

// PostService 帖子与评论聚合，以及按时间倒序的分页读取
type PostService interface {
	CreatePost(ctx context.Context, authorID, content string) (*PostView, error)
	AddComment(ctx context.Context, postID string, author cache.Author, content string) (*CommentView, error)
	ListPosts(ctx context.Context, page, pageSize int) ([]PostView, error)
	GetPost(ctx context.Context, id string) (*PostView, error)
}

type postService struct {
	store       *repository.Store
	authors     *cache.AuthorCache
	defaultSize int
	now         func() time.Time
}

// NewPostService pageSize<=0 时使用默认的 5 条
func NewPostService(store *repository.Store, authors *cache.AuthorCache, pageSize int) PostService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &postService{store: store, authors: authors, defaultSize: pageSize, now: time.Now}
}

type postPayload struct {
	PostID   string `json:"postId"`
	AuthorID string `json:"authorId"`
}

type commentPayload struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	AuthorID  string `json:"authorId"`
}

// CreatePost 帖子与 post.created 事件在同一事务内落地
func (s *postService) CreatePost(ctx context.Context, authorID, content string) (*PostView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	now := s.now()
	post := &model.Post{ID: model.NewID(), AuthorID: authorID, Content: content, CreatedAt: now, UpdatedAt: now}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Posts.Create(ctx, post); err != nil {
			return err
		}
		evt, err := newEvent(EventPostCreated, post.ID, authorID, now, postPayload{PostID: post.ID, AuthorID: authorID})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}

	authors, err := s.authors.Resolve(ctx, []string{authorID})
	if err != nil {
		return nil, storeError(err)
	}
	v := newPostView(post, authors)
	return &v, nil
}

// AddComment 返回的评论作者直接使用调用方的身份声明，不回查用户表
func (s *postService) AddComment(ctx context.Context, postID string, author cache.Author, content string) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	if !model.ValidID(postID) {
		return nil, ErrPostNotFound
	}
	now := s.now()
	c := &model.Comment{ID: model.NewID(), PostID: postID, AuthorID: author.ID, Content: content, CreatedAt: now, UpdatedAt: now}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Posts.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPostNotFound
		}
		if err := tx.Posts.CreateComment(ctx, c); err != nil {
			return err
		}
		evt, err := newEvent(EventCommentCreated, postID, author.ID, now, commentPayload{CommentID: c.ID, PostID: postID, AuthorID: author.ID})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}
	v := newCommentView(c, author)
	return &v, nil
}

// MaxPageSize 单页上限，超出按上限处理
const MaxPageSize = 100

// maxOffset 偏移超过该值的页必然为空，直接返回
const maxOffset = math.MaxInt32

// ListPosts page 从 1 开始，小于 1 按 1 处理
func (s *postService) ListPosts(ctx context.Context, page, pageSize int) ([]PostView, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page-1 > maxOffset/pageSize {
		return []PostView{}, nil
	}
	posts, err := s.store.Posts.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeError(err)
	}
	return s.render(ctx, posts...)
}

func (s *postService) GetPost(ctx context.Context, id string) (*PostView, error) {
	if !model.ValidID(id) {
		return nil, ErrPostNotFound
	}
	p, err := s.store.Posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError(err)
	}
	views, err := s.render(ctx, p)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// render 批量解析帖子和评论作者，只暴露 {id, name}
func (s *postService) render(ctx context.Context, posts ...*model.Post) ([]PostView, error) {
	authors, err := s.authors.Resolve(ctx, authorIDs(posts...))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]PostView, len(posts))
	for i, p := range posts {
		out[i] = newPostView(p, authors)
	}
	return out, nil
}
