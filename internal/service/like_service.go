package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/metrics"
	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
)

// LikeKind 点赞目标类型
type LikeKind string

const (
	LikePost    LikeKind = "post"
	LikeComment LikeKind = "comment"
)

// ParseLikeKind 只接受 post 与 comment
func ParseLikeKind(s string) (LikeKind, error) {
	switch LikeKind(s) {
	case LikePost, LikeComment:
		return LikeKind(s), nil
	}
	return "", ErrInvalidLikeType
}

// ToggleResult 翻转后的目标；评论点赞时 Comment 非空且 PostID 为所属帖子
type ToggleResult struct {
	Kind    LikeKind
	UserID  string
	Liked   bool
	PostID  string
	Post    *PostView
	Comment *CommentView
}

type LikeService interface {
	Toggle(ctx context.Context, kind LikeKind, targetID, userID string) (*ToggleResult, error)
}

type likeService struct {
	store *repository.Store
	posts PostService
	now   func() time.Time
}

func NewLikeService(store *repository.Store, posts PostService) LikeService {
	return &likeService{store: store, posts: posts, now: time.Now}
}

type likePayload struct {
	Kind     LikeKind `json:"kind"`
	TargetID string   `json:"targetId"`
	PostID   string   `json:"postId"`
	UserID   string   `json:"userId"`
	Liked    bool     `json:"liked"`
}

func notFoundFor(kind LikeKind) error {
	if kind == LikeComment {
		return ErrCommentNotFound
	}
	return ErrPostNotFound
}

// Toggle 定位目标、翻转点赞、写事件在一个事务内完成，随后读取最新聚合
func (s *likeService) Toggle(ctx context.Context, kind LikeKind, targetID, userID string) (*ToggleResult, error) {
	if _, err := ParseLikeKind(string(kind)); err != nil {
		return nil, err
	}
	if !model.ValidID(targetID) {
		return nil, notFoundFor(kind)
	}

	res := &ToggleResult{Kind: kind, UserID: userID}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		switch kind {
		case LikePost:
			ok, err := tx.Posts.Exists(ctx, targetID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrPostNotFound
			}
			res.PostID = targetID
			res.Liked, err = tx.Likes.TogglePost(ctx, targetID, userID)
			if err != nil {
				return err
			}
		case LikeComment:
			c, err := tx.Posts.FindComment(ctx, targetID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCommentNotFound
				}
				return err
			}
			res.PostID = c.PostID
			res.Liked, err = tx.Likes.ToggleComment(ctx, targetID, userID)
			if err != nil {
				return err
			}
		}
		evt, err := newEvent(EventLikeToggled, targetID, userID, s.now(), likePayload{
			Kind: kind, TargetID: targetID, PostID: res.PostID, UserID: userID, Liked: res.Liked,
		})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}

	result := "unliked"
	if res.Liked {
		result = "liked"
	}
	metrics.LikeToggles.WithLabelValues(string(kind), result).Inc()

	post, err := s.posts.GetPost(ctx, res.PostID)
	if err != nil {
		return nil, err
	}
	res.Post = post
	if kind == LikeComment {
		res.Comment = post.Comment(targetID)
		if res.Comment == nil {
			return nil, ErrCommentNotFound
		}
	}
	return res, nil
}
