package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// contractSuite runs the Store contract against any backend.
func contractSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "absent")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyToken, "tok"))

		v, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok", v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyUser, "old"))
		require.NoError(t, s.Set(ctx, KeyUser, "new"))

		v, err := s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.Equal(t, "new", v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyToken, "tok"))
		require.NoError(t, s.Remove(ctx, KeyToken))
		require.NoError(t, s.Remove(ctx, KeyToken))

		_, err := s.Get(ctx, KeyToken)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyToken, "tok"))
		require.NoError(t, s.Set(ctx, KeyUser, `{"id":"1"}`))
		require.NoError(t, s.Remove(ctx, KeyToken))

		v, err := s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"1"}`, v)
	})
}

func TestMemoryStore(t *testing.T) {
	contractSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestFileStore(t *testing.T) {
	contractSuite(t, func(t *testing.T) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	})
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	contractSuite(t, func(t *testing.T) Store {
		return NewKeyringStore("", t.Name())
	})
}

func TestRouter(t *testing.T) {
	contractSuite(t, func(t *testing.T) Store {
		return NewRouter(NewMemoryStore()).Route(KeyToken, NewMemoryStore())
	})
}

func TestRouter_SendsRoutedKeysToTheirBackend(t *testing.T) {
	ctx := context.Background()
	fallback := NewMemoryStore()
	tokens := NewMemoryStore()
	r := NewRouter(fallback).Route(KeyToken, tokens)

	require.NoError(t, r.Set(ctx, KeyToken, "tok"))
	require.NoError(t, r.Set(ctx, KeyUser, "user"))

	assert.Equal(t, 1, tokens.Len())
	assert.Equal(t, 1, fallback.Len())

	_, err := fallback.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyringStore_ScopesKeys(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	a := NewKeyringStore("svc", "api-a")
	b := NewKeyringStore("svc", "api-b")

	require.NoError(t, a.Set(ctx, KeyToken, "token-a"))
	_, err := b.Get(ctx, KeyToken)
	require.ErrorIs(t, err, ErrNotFound)

	v, err := keyring.Get("svc", "token-api-a")
	require.NoError(t, err)
	assert.Equal(t, "token-a", v)
}

func TestKeyringStore_WrapsBackendErrors(t *testing.T) {
	keyring.MockInitWithError(errors.New("keychain locked"))
	t.Cleanup(keyring.MockInit)
	ctx := context.Background()

	s := NewKeyringStore("", "scope")

	err := s.Set(ctx, KeyToken, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save token to keyring")

	_, err = s.Get(ctx, KeyToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = s.Remove(ctx, KeyToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain locked")
}

func TestFileStore_FileModeAndCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path)

	require.NoError(t, s.Set(ctx, KeyUser, "u"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = s.Get(ctx, KeyUser)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "failed to parse storage file")
}

func TestFileStore_RemoveOnMissingFileIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path)

	require.NoError(t, s.Remove(context.Background(), KeyUser))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "remove must not create the file")
}
