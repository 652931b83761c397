package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/field"
	"github.com/iamteem/redisco/model"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func registerPerson(t *testing.T, name string, client *redis.Client) *model.Schema {
	t.Helper()
	s := model.Register(name).WithDB(client)
	s.Field(field.NewStringField("first_name", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewStringField("last_name", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewIntegerField("age", field.DefaultOptions()))
	s.Computed("full_name", func(i *model.Instance) string {
		first, _ := i.Get("first_name").(string)
		last, _ := i.Get("last_name").(string)
		return first + " " + last
	})
	return s
}

func TestSaveAndGetByID(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person1", client)

	inst := s.New()
	inst.Set("first_name", "Richard")
	inst.Set("last_name", "Cypher")
	inst.Set("age", int64(31))
	require.NoError(t, inst.Save(ctx))
	assert.NotEmpty(t, inst.ID())

	got, err := s.Objects().GetByID(ctx, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, "Richard", got.Get("first_name"))
	assert.Equal(t, int64(31), got.Get("age"))

	_, err = s.Objects().GetByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestValidationFailsOnMissingRequiredField(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person2", client)

	inst := s.New()
	inst.Set("first_name", "Richard")
	err := inst.Save(ctx)
	require.Error(t, err)
	var verr *model.FieldValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, inst.IsNew())
}

func TestEqualityFilter(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person3", client)

	_, err := s.Objects().Create(ctx, map[string]any{"first_name": "Richard", "last_name": "Cypher", "age": int64(31)})
	require.NoError(t, err)
	_, err = s.Objects().Create(ctx, map[string]any{"first_name": "Kahlan", "last_name": "Amnell", "age": int64(28)})
	require.NoError(t, err)

	results, err := s.Objects().Filter(map[string]any{"first_name": "Richard"}).All(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cypher", results[0].Get("last_name"))

	n, err := s.Objects().All().Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestComputedIndexFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person4", client)

	_, err := s.Objects().Create(ctx, map[string]any{"first_name": "Richard", "last_name": "Cypher", "age": int64(31)})
	require.NoError(t, err)
	_, err = s.Objects().Create(ctx, map[string]any{"first_name": "Kahlan", "last_name": "Amnell", "age": int64(28)})
	require.NoError(t, err)

	results, err := s.Objects().Filter(map[string]any{"full_name": "Richard Cypher"}).All(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	ordered, err := s.Objects().All().Order("full_name").All(ctx)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "Kahlan", ordered[0].Get("first_name"))
	assert.Equal(t, "Richard", ordered[1].Get("first_name"))
}

func TestDeleteRemovesAllIndexEntries(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person5", client)

	inst, err := s.Objects().Create(ctx, map[string]any{"first_name": "Richard", "last_name": "Cypher", "age": int64(31)})
	require.NoError(t, err)
	id := inst.ID()

	require.NoError(t, inst.Delete(ctx))

	_, err = s.Objects().GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)

	results, err := s.Objects().Filter(map[string]any{"first_name": "Richard"}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	n, err := s.Objects().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestSaveIsIdempotentOnIndices(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerPerson(t, "Person6", client)

	inst := s.New()
	inst.Set("first_name", "Richard")
	inst.Set("last_name", "Cypher")
	inst.Set("age", int64(31))
	require.NoError(t, inst.Save(ctx))

	inst.Set("first_name", "Rahl")
	require.NoError(t, inst.Save(ctx))

	byOld, err := s.Objects().Filter(map[string]any{"first_name": "Richard"}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, byOld)

	byNew, err := s.Objects().Filter(map[string]any{"first_name": "Rahl"}).All(ctx)
	require.NoError(t, err)
	require.Len(t, byNew, 1)
	assert.Equal(t, inst.ID(), byNew[0].ID())
}

func registerAge(t *testing.T, name string, client *redis.Client) *model.Schema {
	t.Helper()
	s := model.Register(name).WithDB(client)
	s.Field(field.NewStringField("name", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewIntegerField("age", field.DefaultOptions()))
	return s
}

func TestRangeFilter(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerAge(t, "Ninja1", client)

	ages := []int64{20, 25, 30, 35, 40}
	for _, age := range ages {
		_, err := s.Objects().Create(ctx, map[string]any{"name": "n", "age": age})
		require.NoError(t, err)
	}

	between, err := s.Objects().All().Between("age", int64(25), int64(35)).All(ctx)
	require.NoError(t, err)
	assert.Len(t, between, 3)

	gt, err := s.Objects().All().Gt("age", int64(30)).All(ctx)
	require.NoError(t, err)
	assert.Len(t, gt, 2)

	le, err := s.Objects().All().Le("age", int64(25)).All(ctx)
	require.NoError(t, err)
	assert.Len(t, le, 2)
}

func TestLimit(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := registerAge(t, "Ninja2", client)
	for i := 0; i < 5; i++ {
		_, err := s.Objects().Create(ctx, map[string]any{"name": "n", "age": int64(i)})
		require.NoError(t, err)
	}

	limited, err := s.Objects().All().Order("age").Limit(1, 2).All(ctx)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(1), limited[0].Get("age"))
	assert.Equal(t, int64(2), limited[1].Get("age"))
}

func TestReferenceAndRelatedSet(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	word := model.Register("Word1").WithDB(client)
	word.Field(field.NewStringField("text", field.Options{Indexed: true, Required: true}))

	character := model.Register("Character1").WithDB(client)
	character.Field(field.NewStringField("glyph", field.Options{Indexed: true, Required: true}))
	character.ReferenceField(field.NewReferenceField("word", "Word1", field.ReferenceOptions{Indexed: true, Required: true}))

	w, err := word.Objects().Create(ctx, map[string]any{"text": "hello"})
	require.NoError(t, err)

	_, err = character.Objects().Create(ctx, map[string]any{"glyph": "h", "word_id": w.ID()})
	require.NoError(t, err)
	_, err = character.Objects().Create(ctx, map[string]any{"glyph": "e", "word_id": w.ID()})
	require.NoError(t, err)

	q, err := w.RelatedSet("character1_set")
	require.NoError(t, err)
	chars, err := q.All(ctx)
	require.NoError(t, err)
	assert.Len(t, chars, 2)

	deref, err := chars[0].Reference(ctx, "word")
	require.NoError(t, err)
	assert.Equal(t, "hello", deref.Get("text"))
}

func TestUnindexedFilterErrors(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := model.Register("Plain1").WithDB(client)
	s.Field(field.NewStringField("name", field.Options{Indexed: false}))

	_, err := s.Objects().Create(ctx, map[string]any{"name": "x"})
	require.NoError(t, err)

	_, err = s.Objects().Filter(map[string]any{"name": "x"}).All(ctx)
	assert.ErrorIs(t, err, model.ErrAttributeNotIndexed)
}

func TestAutoNowAddStampsOnlyOnFirstSave(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := model.Register("Ledger1").WithDB(client)
	s.Field(field.NewStringField("note", field.Options{Indexed: true}))
	s.Field(field.NewDateTimeField("created_at", field.DateTimeOptions{
		Options:    field.Options{Indexed: true},
		AutoNowAdd: true,
	}))

	inst := s.New()
	inst.Set("note", "first")
	require.NoError(t, inst.Save(ctx))

	got, err := s.Objects().GetByID(ctx, inst.ID())
	require.NoError(t, err)
	created := got.Get("created_at").(time.Time)
	assert.False(t, created.IsZero())

	got.Set("note", "second")
	require.NoError(t, got.Save(ctx))

	reloaded, err := s.Objects().GetByID(ctx, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, created.Unix(), reloaded.Get("created_at").(time.Time).Unix())
}

func TestDateTimeFieldThroughSchema(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	s := model.Register("Event1").WithDB(client)
	s.Field(field.NewStringField("title", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewDateTimeField("starts_at", field.DateTimeOptions{Options: field.DefaultOptions()}))

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	inst, err := s.Objects().Create(ctx, map[string]any{"title": "launch", "starts_at": start})
	require.NoError(t, err)

	got, err := s.Objects().GetByID(ctx, inst.ID())
	require.NoError(t, err)
	gotTime := got.Get("starts_at").(time.Time)
	assert.Equal(t, start.Unix(), gotTime.Unix())
}
