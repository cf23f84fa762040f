package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialhub/internal/model"
)

func TestTogglePostFlipsMembership(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann")
	p := &model.Post{ID: model.NewID(), AuthorID: u.ID, Content: "hi"}
	require.NoError(t, store.Posts.Create(ctx, p))

	liked, err := store.Likes.TogglePost(ctx, p.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = store.Likes.TogglePost(ctx, p.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	var cnt int64
	require.NoError(t, db.Model(&model.PostLike{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestToggleCommentLeavesPostLikes(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann")
	p := &model.Post{ID: model.NewID(), AuthorID: u.ID, Content: "hi"}
	require.NoError(t, store.Posts.Create(ctx, p))
	c := &model.Comment{ID: model.NewID(), PostID: p.ID, AuthorID: u.ID, Content: "c"}
	require.NoError(t, store.Posts.CreateComment(ctx, c))

	liked, err := store.Likes.ToggleComment(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := store.Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Likes, 1)
	assert.Equal(t, u.ID, got.Comments[0].Likes[0].UserID)
}

func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann")
	p := &model.Post{ID: model.NewID(), AuthorID: u.ID, Content: "hi"}
	require.NoError(t, store.Posts.Create(ctx, p))

	err := store.InTx(ctx, func(tx *Store) error {
		if _, err := tx.Likes.TogglePost(ctx, p.ID, u.ID); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var cnt int64
	require.NoError(t, db.Model(&model.PostLike{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}
