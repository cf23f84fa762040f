package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
)

func TestTogglePostIsInvolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.seedUser(t, "Ann"), env.seedUser(t, "Bob")
	p, err := env.posts.CreatePost(ctx, a.ID, "hello")
	require.NoError(t, err)

	res, err := env.likes.Toggle(ctx, LikePost, p.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, LikePost, res.Kind)
	assert.Equal(t, b.ID, res.UserID)
	assert.Equal(t, []string{b.ID}, res.Post.Likes)
	assert.Equal(t, cache.Author{ID: a.ID, Name: "Ann"}, res.Post.User)
	assert.Nil(t, res.Comment)

	res, err = env.likes.Toggle(ctx, LikePost, p.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Empty(t, res.Post.Likes)

	assert.Equal(t, []string{EventPostCreated, EventLikeToggled, EventLikeToggled}, env.outboxTypes(t))
}

func TestToggleCommentLocatesParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.seedUser(t, "Ann"), env.seedUser(t, "Bob")
	p, err := env.posts.CreatePost(ctx, a.ID, "hello")
	require.NoError(t, err)
	_, err = env.likes.Toggle(ctx, LikePost, p.ID, a.ID)
	require.NoError(t, err)
	c1, err := env.posts.AddComment(ctx, p.ID, cache.Author{ID: a.ID, Name: "Ann"}, "one")
	require.NoError(t, err)
	c2, err := env.posts.AddComment(ctx, p.ID, cache.Author{ID: b.ID, Name: "Bob"}, "two")
	require.NoError(t, err)

	res, err := env.likes.Toggle(ctx, LikeComment, c2.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, p.ID, res.PostID)
	require.NotNil(t, res.Comment)
	assert.Equal(t, c2.ID, res.Comment.ID)
	assert.Equal(t, []string{b.ID}, res.Comment.Likes)

	// 帖子自身与其他评论的点赞集合不变
	assert.Equal(t, []string{a.ID}, res.Post.Likes)
	assert.Empty(t, res.Post.Comment(c1.ID).Likes)
}

func TestToggleErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")

	_, err := env.likes.Toggle(ctx, LikeKind("share"), model.NewID(), u.ID)
	assert.ErrorIs(t, err, ErrInvalidLikeType)

	_, err = env.likes.Toggle(ctx, LikePost, model.NewID(), u.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = env.likes.Toggle(ctx, LikeComment, model.NewID(), u.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ParseLikeKind("comment")
	assert.NoError(t, err)
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.seedUser(t, "Ann")
	p, err := env.posts.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)

	const n = 8
	likers := make([]*model.User, n)
	for i := range likers {
		likers[i] = env.seedUser(t, "User"+string(rune('A'+i)))
	}
	repeat := env.seedUser(t, "Repeat")

	var wg sync.WaitGroup
	errs := make(chan error, n+4)
	for _, u := range likers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := env.likes.Toggle(ctx, LikePost, p.ID, id)
			errs <- err
		}(u.ID)
	}
	// 同一用户偶数次翻转，最终不在集合中
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.likes.Toggle(ctx, LikePost, p.ID, repeat.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := env.posts.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, n)
	assert.NotContains(t, got.Likes, repeat.ID)

	var cnt int64
	require.NoError(t, env.db.Model(&model.PostLike{}).Where("post_id = ?", p.ID).Count(&cnt).Error)
	assert.EqualValues(t, n, cnt)
}
