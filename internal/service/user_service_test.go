package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialhub/internal/model"
)

func TestSignupAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Signup(ctx, " Ann ", "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.NotEqual(t, "secret", u.Password)
	assert.Equal(t, []string{EventUserCreated}, env.outboxTypes(t))

	got, err := env.users.Authenticate(ctx, "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.users.Authenticate(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.users.Authenticate(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Signup(ctx, "Ann", "ann@example.com", "secret")
	require.NoError(t, err)
	_, err = env.users.Signup(ctx, "Other", "ann@example.com", "secret")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.users.Signup(ctx, "", "x@example.com", "secret")
	assert.ErrorIs(t, err, ErrMissingSignupField)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")

	p, err := env.users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &ProfileView{ID: u.ID, Name: "Ann", Email: "ann@example.com"}, p)

	_, err = env.users.Profile(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidUserID)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = env.users.Profile(ctx, model.NewID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "Annabel")
	env.seedUser(t, "Hannah")
	env.seedUser(t, "Bob")

	got, err := env.users.Search(ctx, "ANN")
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, u := range got {
		names[i] = u.Name
	}
	assert.ElementsMatch(t, []string{"Annabel", "Hannah"}, names)

	_, err = env.users.Search(ctx, "  ")
	assert.ErrorIs(t, err, ErrSearchTextRequired)
}

func TestUpdateEvictsAuthorSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	_, err := env.posts.CreatePost(ctx, u.ID, "hello")
	require.NoError(t, err)

	name := "Anna"
	updated, err := env.users.Update(ctx, u.ID, UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)

	posts, err := env.posts.ListPosts(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Anna", posts[0].User.Name)
}

func TestUpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")

	blank := "  "
	_, err := env.users.Update(ctx, u.ID, UserPatch{Name: &blank})
	assert.ErrorIs(t, err, ErrEmptyName)

	pw, confirm := "one", "two"
	_, err = env.users.Update(ctx, u.ID, UserPatch{Password: &pw, ConfirmPassword: &confirm})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	name := "X"
	_, err = env.users.Update(ctx, model.NewID(), UserPatch{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type memObjects struct {
	keys     map[string][]byte
	err      error
	afterPut func()
}

func (m *memObjects) Put(_ context.Context, key, _ string, r io.Reader, _ int64) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.keys[key] = b
	if m.afterPut != nil {
		m.afterPut()
	}
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	objects := &memObjects{keys: map[string][]byte{}}
	env.users.objects = objects

	got, err := env.users.UploadAvatar(ctx, u.ID, "me.png", "image/png", bytes.NewReader([]byte("png")), 3)
	require.NoError(t, err)
	assert.Contains(t, got.AvatarRef, "avatars/"+u.ID+"/")
	assert.Contains(t, objects.keys, got.AvatarRef)

	_, err = env.users.UploadAvatar(ctx, u.ID, "me.txt", "text/plain", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrAvatarType)

	objects.err = errors.New("bucket gone")
	_, err = env.users.UploadAvatar(ctx, u.ID, "me.jpg", "image/jpeg", bytes.NewReader([]byte("jpg")), 3)
	assert.Equal(t, KindStore, KindOf(err))

	env.users.objects = nil
	_, err = env.users.UploadAvatar(ctx, u.ID, "me.png", "image/png", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrAvatarUnavailable)
}

func TestUploadAvatarRemovesObjectWhenUpdateFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	// 上传成功后用户被删除，引用无法落库
	objects := &memObjects{keys: map[string][]byte{}, afterPut: func() {
		require.NoError(t, env.db.Delete(&model.User{}, "id = ?", u.ID).Error)
	}}
	env.users.objects = objects

	_, err := env.users.UploadAvatar(ctx, u.ID, "me.png", "image/png", bytes.NewReader([]byte("png")), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, objects.keys)
}
