package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "products:list:a", []byte("x"), time.Minute))
	got, err := m.Get(ctx, "products:list:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "products:list:a")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "products:list:1", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "products:list:2", []byte("2"), 0))
	require.NoError(t, m.Set(ctx, "idem:u1:k", []byte("3"), 0))

	require.NoError(t, m.DeletePrefix(ctx, "products:"))
	_, err := m.Get(ctx, "products:list:1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "idem:u1:k")
	assert.NoError(t, err)
}

func TestMemory_AllowWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "login:1.2.3.4:alice", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, err := m.Allow(ctx, "login:1.2.3.4:alice", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(61 * time.Second)
	ok, err = m.Allow(ctx, "login:1.2.3.4:alice", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_Reserve(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.Reserve(ctx, "idem:u1:abc", []byte("pending"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Reserve(ctx, "idem:u1:abc", []byte("pending"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Delete(ctx, "idem:u1:abc"))
	ok, err = m.Reserve(ctx, "idem:u1:abc", []byte("pending"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
