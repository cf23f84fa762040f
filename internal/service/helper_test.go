package service

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/internal/testutil"
)

type testEnv struct {
	db      *gorm.DB
	rdb     *redis.Client
	store   *repository.Store
	authors *cache.AuthorCache
	users   *userService
	friends *friendshipService
	posts   *postService
	likes   *likeService
}

// stepClock 每次调用前进一秒，保证 created_at 严格递增
func stepClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	_, rdb := testutil.Redis(t)
	store := repository.NewStore(db)
	authors := cache.NewAuthorCache(store.Users, rdb, time.Minute)
	clock := stepClock()

	users := NewUserService(store, authors, nil).(*userService)
	users.now = clock
	friends := NewFriendshipService(store).(*friendshipService)
	friends.now = clock
	posts := NewPostService(store, authors, 0).(*postService)
	posts.now = clock
	likes := NewLikeService(store, posts).(*likeService)
	likes.now = clock

	return &testEnv{db: db, rdb: rdb, store: store, authors: authors, users: users, friends: friends, posts: posts, likes: likes}
}

func (e *testEnv) seedUser(t *testing.T, name string) *model.User {
	return testutil.SeedUser(t, e.db, name)
}

func (e *testEnv) outboxTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	if err := e.db.Model(&model.OutboxEvent{}).Order("created_at ASC, id ASC").Pluck("type", &types).Error; err != nil {
		t.Fatalf("outbox: %v", err)
	}
	return types
}
