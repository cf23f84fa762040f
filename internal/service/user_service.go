package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/pkg/auth"
	"github.com/d60-Lab/socialhub/pkg/logger"
	"github.com/d60-Lab/socialhub/pkg/storage"
)

var (
	ErrAvatarUnavailable = &Error{Kind: KindStore, Message: "Avatar storage is not configured"}
	ErrAvatarType        = &Error{Kind: KindValidation, Message: "Only PNG or JPEG images are allowed"}
)

// UserPatch 资料修改；nil 字段保持不变
type UserPatch struct {
	Name            *string
	Password        *string
	ConfirmPassword *string
	AvatarRef       *string
}

// UserService 身份存储
type UserService interface {
	Signup(ctx context.Context, name, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Profile(ctx context.Context, id string) (*ProfileView, error)
	Search(ctx context.Context, text string) ([]UserView, error)
	Update(ctx context.Context, id string, patch UserPatch) (*model.User, error)
	UploadAvatar(ctx context.Context, id, filename, contentType string, r io.Reader, size int64) (*model.User, error)
}

type userService struct {
	store   *repository.Store
	authors *cache.AuthorCache
	objects storage.ObjectStore
	now     func() time.Time
}

// NewUserService objects 可为 nil，此时头像上传不可用
func NewUserService(store *repository.Store, authors *cache.AuthorCache, objects storage.ObjectStore) UserService {
	return &userService{store: store, authors: authors, objects: objects, now: time.Now}
}

func (s *userService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingSignupField
	}
	if _, err := s.store.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, storeError(fmt.Errorf("hash password: %w", err))
	}
	now := s.now()
	u := &model.User{ID: model.NewID(), Name: name, Email: email, Password: hash, CreatedAt: now, UpdatedAt: now}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}
		evt, err := newEvent(EventUserCreated, u.ID, u.ID, now, ProfileView{ID: u.ID, Name: u.Name, Email: u.Email})
		if err != nil {
			return err
		}
		return tx.Outbox.Append(ctx, evt)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return u, nil
}

// Authenticate 邮箱或密码错误统一返回 ErrInvalidCredentials
func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if !model.ValidID(id) {
		return nil, ErrInvalidUserID
	}
	u, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return u, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return u, nil
}

func (s *userService) Profile(ctx context.Context, id string) (*ProfileView, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProfileView{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

// Search 名称子串、忽略大小写、不分页
func (s *userService) Search(ctx context.Context, text string) ([]UserView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrSearchTextRequired
	}
	users, err := s.store.Users.SearchByName(ctx, text)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]UserView, len(users))
	for i, u := range users {
		out[i] = NewUserView(u)
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, id string, patch UserPatch) (*model.User, error) {
	if !model.ValidID(id) {
		return nil, ErrInvalidUserID
	}
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		fields["name"] = name
	}
	if patch.Password != nil && *patch.Password != "" {
		if patch.ConfirmPassword != nil && *patch.ConfirmPassword != *patch.Password {
			return nil, ErrPasswordMismatch
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, storeError(fmt.Errorf("hash password: %w", err))
		}
		fields["password"] = hash
	}
	if patch.AvatarRef != nil {
		fields["avatar_ref"] = *patch.AvatarRef
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	u, err := s.store.Users.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	if _, renamed := fields["name"]; renamed {
		s.authors.Evict(ctx, id)
	}
	return u, nil
}

func (s *userService) UploadAvatar(ctx context.Context, id, filename, contentType string, r io.Reader, size int64) (*model.User, error) {
	if s.objects == nil {
		return nil, ErrAvatarUnavailable
	}
	ext, ok := avatarExt(contentType, filename)
	if !ok {
		return nil, ErrAvatarType
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	key := path.Join("avatars", id, model.NewID()+ext)
	if err := s.objects.Put(ctx, key, contentType, r, size); err != nil {
		return nil, storeError(fmt.Errorf("put avatar: %w", err))
	}
	u, err := s.Update(ctx, id, UserPatch{AvatarRef: &key})
	if err != nil {
		// 引用未落库，清理刚上传的对象
		if derr := s.objects.Delete(context.WithoutCancel(ctx), key); derr != nil {
			logger.Warn("remove orphaned avatar", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return u, nil
}

func avatarExt(contentType, filename string) (string, bool) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png", true
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return ".png", contentType == "" || contentType == "application/octet-stream"
	case ".jpg", ".jpeg":
		return ".jpg", contentType == "" || contentType == "application/octet-stream"
	}
	return "", false
}
