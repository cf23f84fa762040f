package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	p := NewJWTProvider("secret", time.Hour)
	tok, err := p.Issue(Identity{ID: "u1", Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	id, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u1", Name: "Ann", Email: "ann@example.com"}, *id)
}

func TestVerifyRejects(t *testing.T) {
	p := NewJWTProvider("secret", time.Hour)
	other := NewJWTProvider("other", time.Hour)
	tok, err := other.Issue(Identity{ID: "u1"})
	require.NoError(t, err)

	_, err = p.Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)
	_, err = p.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	p := NewJWTProvider("secret", time.Minute).(*jwtProvider)
	past := time.Now().Add(-2 * time.Hour)
	p.now = func() time.Time { return past }
	tok, err := p.Issue(Identity{ID: "u1"})
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
