package container_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/container"
)

func TestSortedSetAddAndRank(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	z := container.NewSortedSet("myzset")

	require.NoError(t, z.Add(ctx, client, "a", 1))
	require.NoError(t, z.Add(ctx, client, "b", 2))
	require.NoError(t, z.Add(ctx, client, "c", 3))

	rank, err := z.Rank(ctx, client, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rank)

	score, err := z.Score(ctx, client, "c")
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)

	n, err := z.Len(ctx, client)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestSortedSetRangeBounds(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	z := container.NewSortedSet("myzset")
	require.NoError(t, z.Add(ctx, client, "a", 1))
	require.NoError(t, z.Add(ctx, client, "b", 2))
	require.NoError(t, z.Add(ctx, client, "c", 3))

	lt, err := z.Lt(ctx, client, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, lt)

	le, err := z.Le(ctx, client, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, le)

	gt, err := z.Gt(ctx, client, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, gt)

	ge, err := z.Ge(ctx, client, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ge)

	between, err := z.Between(ctx, client, 1, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, between)

	eq, err := z.Eq(ctx, client, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, eq)
}

func TestSortedSetRemove(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	z := container.NewSortedSet("myzset")
	require.NoError(t, z.Add(ctx, client, "a", 1))
	require.NoError(t, z.Remove(ctx, client, "a"))

	members, err := z.Members(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, members)
}
