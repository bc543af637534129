package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	sess, err := s.Get()
	require.NoError(t, err)
	assert.False(t, sess.Valid())

	require.NoError(t, s.Set(Session{AccessToken: "A1", RefreshToken: "R1"}))
	sess, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "A1", sess.AccessToken)
	assert.Equal(t, "R1", sess.RefreshToken)
	assert.True(t, sess.Valid())

	require.NoError(t, s.Clear())
	sess, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", DefaultCredentialsFile)

	s, err := NewFileStore(path)
	require.NoError(t, err)

	// Missing file reads as logged out.
	sess, err := s.Get()
	require.NoError(t, err)
	assert.False(t, sess.Valid())

	require.NoError(t, s.Set(Session{AccessToken: "A1", RefreshToken: "R1"}))

	// A fresh store instance sees the persisted pair.
	s2, err := NewFileStore(path)
	require.NoError(t, err)
	sess, err = s2.Get()
	require.NoError(t, err)
	assert.Equal(t, Session{AccessToken: "A1", RefreshToken: "R1"}, sess)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreClearRemovesBothSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCredentialsFile)
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(Session{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, s.Clear())

	sess, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)

	// Clearing an already-empty store is not an error.
	require.NoError(t, s.Clear())
}

func TestFileStoreRejectsHalfPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCredentialsFile)
	require.NoError(t, os.WriteFile(path, []byte("access_token: only-half\n"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	sess, err := s.Get()
	require.NoError(t, err)
	assert.False(t, sess.Valid())
	assert.Empty(t, sess.AccessToken)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, err := TokenExpiry(signed)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	_, err = TokenExpiry("not-a-jwt")
	assert.Error(t, err)
}
