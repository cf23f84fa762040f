package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
)

// FriendshipService 好友关系：无向、去重
type FriendshipService interface {
	Add(ctx context.Context, userID, friendID string) (*UserView, error)
	Remove(ctx context.Context, userID, friendID string) (*UserView, error)
	ListFriends(ctx context.Context, userID string) ([]UserView, error)
}

type friendshipService struct {
	store *repository.Store
	now   func() time.Time
}

func NewFriendshipService(store *repository.Store) FriendshipService {
	return &friendshipService{store: store, now: time.Now}
}

type friendshipPayload struct {
	UserID   string `json:"userId"`
	FriendID string `json:"friendId"`
}

func (s *friendshipService) Add(ctx context.Context, userID, friendID string) (*UserView, error) {
	if friendID == "" || userID == friendID {
		return nil, ErrSelfFriendship
	}
	if !model.ValidID(userID) || !model.ValidID(friendID) {
		return nil, ErrInvalidID
	}
	users, err := s.store.Users.FindByIDs(ctx, []string{userID, friendID})
	if err != nil {
		return nil, storeError(err)
	}
	var friend *model.User
	for _, u := range users {
		if u.ID == friendID {
			friend = u
		}
	}
	if friend == nil || len(users) < 2 {
		return nil, ErrUserNotFound
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		exists, err := tx.Friendships.Exists(ctx, userID, friendID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyFriends
		}
		if err := tx.Friendships.Create(ctx, userID, friendID); err != nil {
			// 并发添加同一对用户时由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyFriends
			}
			return err
		}
		a, _ := model.CanonicalPair(userID, friendID)
		evt, err := newEvent(EventFriendshipAdded, a, userID, s.now(), friendshipPayload{UserID: userID, FriendID: friendID})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}
	v := NewUserView(friend)
	return &v, nil
}

func (s *friendshipService) Remove(ctx context.Context, userID, friendID string) (*UserView, error) {
	if !model.ValidID(friendID) {
		return nil, ErrInvalidID
	}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		removed, err := tx.Friendships.Delete(ctx, userID, friendID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFriends
		}
		a, _ := model.CanonicalPair(userID, friendID)
		evt, err := newEvent(EventFriendshipRemoved, a, userID, s.now(), friendshipPayload{UserID: userID, FriendID: friendID})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}

	friend, err := s.store.Users.FindByID(ctx, friendID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	v := NewUserView(friend)
	return &v, nil
}

// ListFriends 顺序不做保证
func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]UserView, error) {
	edges, err := s.store.Friendships.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if len(edges) == 0 {
		return []UserView{}, nil
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.Other(userID)
	}
	users, err := s.store.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]UserView, len(users))
	for i, u := range users {
		out[i] = NewUserView(u)
	}
	return out, nil
}
