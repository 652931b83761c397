package container_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/container"
)

func TestHashSetGetAll(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	h := container.NewHash("myhash")

	require.NoError(t, h.Set(ctx, client, map[string]string{"a": "1", "b": "2"}))

	v, err := h.Get(ctx, client, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	all, err := h.All(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	ok, err := h.Contains(ctx, client, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := h.Len(ctx, client)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, h.Del(ctx, client, "a"))
	ok, err = h.Contains(ctx, client, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashKeysAndValues(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	h := container.NewHash("myhash")
	require.NoError(t, h.Set(ctx, client, map[string]string{"a": "1", "b": "2"}))

	keys, err := h.Keys(ctx, client)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	values, err := h.Values(ctx, client)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, values)
}
