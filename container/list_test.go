package container_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/container"
)

func TestListAppendAndSlice(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	l := container.NewList("mylist")

	require.NoError(t, l.Append(ctx, client, "a"))
	require.NoError(t, l.Extend(ctx, client, []string{"b", "c"}))

	members, err := l.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, members)

	n, err := l.Len(ctx, client)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	v, err := l.Index(ctx, client, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestListPopShiftUnshift(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	l := container.NewList("mylist")
	require.NoError(t, l.Extend(ctx, client, []string{"a", "b", "c"}))

	v, err := l.Pop(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	v, err = l.Shift(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, l.Unshift(ctx, client, "z"))
	members, err := l.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "b"}, members)
}

func TestListReverseAndCount(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	l := container.NewList("mylist")
	require.NoError(t, l.Extend(ctx, client, []string{"a", "b", "c", "a"}))

	n, err := l.Count(ctx, client, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, l.Reverse(ctx, client))
	members, err := l.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b", "a"}, members)
}

func TestListCopy(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	l := container.NewList("mylist")
	require.NoError(t, l.Extend(ctx, client, []string{"a", "b"}))

	dest, err := l.Copy(ctx, client, "mylist-copy")
	require.NoError(t, err)
	members, err := dest.Members(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)
}
