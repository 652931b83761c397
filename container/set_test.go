package container_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/container"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSetAddRemoveContains(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := container.NewSet("myset")

	require.NoError(t, s.Add(ctx, client, "a"))
	require.NoError(t, s.Add(ctx, client, "b"))

	ok, err := s.Contains(ctx, client, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Len(ctx, client)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, s.Remove(ctx, client, "a"))
	assert.ErrorIs(t, s.Remove(ctx, client, "a"), container.ErrNotFound)

	require.NoError(t, s.Discard(ctx, client, "missing"))
}

func TestSetUnionIntersectionDifference(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	a := container.NewSet("a")
	b := container.NewSet("b")
	require.NoError(t, a.Add(ctx, client, "1"))
	require.NoError(t, a.Add(ctx, client, "2"))
	require.NoError(t, b.Add(ctx, client, "2"))
	require.NoError(t, b.Add(ctx, client, "3"))

	union, err := a.Union(ctx, client, "u", b)
	require.NoError(t, err)
	members, err := union.Members(ctx, client)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, members)

	inter, err := a.Intersection(ctx, client, "i", b)
	require.NoError(t, err)
	members, err = inter.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, members)

	diff, err := a.Difference(ctx, client, "d", b)
	require.NoError(t, err)
	members, err = diff.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)
}

func TestSetSubsetSupersetDisjoint(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	a := container.NewSet("a")
	b := container.NewSet("b")
	require.NoError(t, a.Add(ctx, client, "1"))
	require.NoError(t, b.Add(ctx, client, "1"))
	require.NoError(t, b.Add(ctx, client, "2"))

	sub, err := a.IsSubset(ctx, client, b)
	require.NoError(t, err)
	assert.True(t, sub)

	sup, err := b.IsSuperset(ctx, client, a)
	require.NoError(t, err)
	assert.True(t, sup)

	c := container.NewSet("c")
	require.NoError(t, c.Add(ctx, client, "99"))
	disjoint, err := a.IsDisjoint(ctx, client, c)
	require.NoError(t, err)
	assert.True(t, disjoint)
}

func TestSetCopy(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	a := container.NewSet("a")
	require.NoError(t, a.Add(ctx, client, "x"))
	require.NoError(t, a.Add(ctx, client, "y"))

	copied, err := a.Copy(ctx, client, "a-copy")
	require.NoError(t, err)
	members, err := copied.Members(ctx, client)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, members)
}
