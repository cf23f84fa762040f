package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialhub/internal/model"
)

func TestAddFriendIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.seedUser(t, "Ann"), env.seedUser(t, "Bob")

	friend, err := env.friends.Add(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, friend.ID)
	assert.Equal(t, "Bob", friend.Name)

	_, err = env.friends.Add(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
	_, err = env.friends.Add(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyFriends)

	var cnt int64
	require.NoError(t, env.db.Model(&model.Friendship{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	ofA, err := env.friends.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ofA, 1)
	assert.Equal(t, b.ID, ofA[0].ID)

	ofB, err := env.friends.ListFriends(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, ofB, 1)
	assert.Equal(t, a.ID, ofB[0].ID)

	assert.Equal(t, []string{EventFriendshipAdded}, env.outboxTypes(t))
}

func TestAddFriendValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedUser(t, "Ann")

	_, err := env.friends.Add(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfFriendship)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = env.friends.Add(ctx, a.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = env.friends.Add(ctx, a.ID, model.NewID())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFriendEitherOrientation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.seedUser(t, "Ann"), env.seedUser(t, "Bob")

	_, err := env.friends.Remove(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFriends)

	_, err = env.friends.Add(ctx, a.ID, b.ID)
	require.NoError(t, err)

	removed, err := env.friends.Remove(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)

	friends, err := env.friends.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	_, err = env.friends.Remove(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFriends)
	assert.Equal(t, []string{EventFriendshipAdded, EventFriendshipRemoved}, env.outboxTypes(t))
}
