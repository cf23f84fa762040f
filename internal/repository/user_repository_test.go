package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/model"
)

func TestUserEmailUnique(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: model.NewID(), Name: "Ann", Email: "ann@example.com", Password: "h"}))
	err := repo.Create(ctx, &model.User{ID: model.NewID(), Name: "Ann2", Email: "ann@example.com", Password: "h"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 大小写敏感
	require.NoError(t, repo.Create(ctx, &model.User{ID: model.NewID(), Name: "Ann3", Email: "ANN@example.com", Password: "h"}))
	u, err := repo.FindByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann3", u.Name)
}

func TestUserSearchByName(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "Alice")
	seedUser(t, db, "Malik")
	seedUser(t, db, "Bob")
	pct := &model.User{ID: model.NewID(), Name: "100%_real", Email: "pct@example.com", Password: "p"}
	require.NoError(t, db.Create(pct).Error)

	res, err := repo.SearchByName(ctx, "LI")
	require.NoError(t, err)
	names := make([]string, len(res))
	for i, u := range res {
		names[i] = u.Name
	}
	assert.ElementsMatch(t, []string{"Alice", "Malik"}, names)

	res, err = repo.SearchByName(ctx, "%_")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, pct.ID, res[0].ID)
}

func TestUserUpdate(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann")

	got, err := repo.Update(ctx, u.ID, map[string]any{"name": "Anna", "avatar_ref": "avatars/x.png"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "avatars/x.png", got.AvatarRef)

	_, err = repo.Update(ctx, model.NewID(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
