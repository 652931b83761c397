package field_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamteem/redisco/field"
)

func TestIntegerFieldStorageRoundTrip(t *testing.T) {
	f := field.NewIntegerField("age", field.DefaultOptions())

	s, err := f.TypecastForStorage(int64(31))
	require.NoError(t, err)
	assert.Equal(t, "31", s)

	v, err := f.TypecastForRead(s)
	require.NoError(t, err)
	assert.Equal(t, int64(31), v)

	s, err = f.TypecastForStorage(nil)
	require.NoError(t, err)
	assert.Equal(t, "0", s)

	score, err := f.Score(int64(31))
	require.NoError(t, err)
	assert.Equal(t, 31.0, score)
}

func TestFloatFieldStorageRoundTrip(t *testing.T) {
	f := field.NewFloatField("price", field.DefaultOptions())

	s, err := f.TypecastForStorage(3.5)
	require.NoError(t, err)
	assert.Equal(t, "3.5", s)

	v, err := f.TypecastForRead(s)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestBooleanFieldStorage(t *testing.T) {
	f := field.NewBooleanField("active", field.DefaultOptions())

	s, err := f.TypecastForStorage(true)
	require.NoError(t, err)
	assert.Equal(t, "True", s)

	s, err = f.TypecastForStorage(false)
	require.NoError(t, err)
	assert.Equal(t, "False", s)

	s, err = f.TypecastForStorage(nil)
	require.NoError(t, err)
	assert.Equal(t, "False", s)

	v, err := f.TypecastForRead("True")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = f.TypecastForRead("nope")
	assert.Error(t, err)
}

func TestDateTimeFieldStorageRoundTrip(t *testing.T) {
	f := field.NewDateTimeField("created", field.DateTimeOptions{Options: field.DefaultOptions()})
	ts := time.Date(2024, 3, 15, 10, 30, 0, 500000000, time.UTC)

	s, err := f.TypecastForStorage(ts)
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.500000$`, s)

	v, err := f.TypecastForRead(s)
	require.NoError(t, err)
	got := v.(time.Time)
	assert.Equal(t, ts.Unix(), got.Unix())
}

func TestDateFieldStoresMidnight(t *testing.T) {
	f := field.NewDateField("birthday", field.DateTimeOptions{Options: field.DefaultOptions()})
	ts := time.Date(2024, 3, 15, 18, 45, 0, 0, time.UTC)

	s, err := f.TypecastForStorage(ts)
	require.NoError(t, err)

	v, err := f.TypecastForRead(s)
	require.NoError(t, err)
	got := v.(time.Time)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 15, got.Day())

	score, err := f.Score(ts)
	require.NoError(t, err)
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, float64(midnight.Unix()), score)
}

func TestRequiredValidation(t *testing.T) {
	f := field.NewStringField("name", field.Options{Indexed: true, Required: true})

	errs := f.Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "required", errs[0].Reason)

	errs = f.Validate("present")
	assert.Empty(t, errs)
}

func TestListFieldValidateAndTypecast(t *testing.T) {
	elem := field.NewStringField("tag", field.Options{})
	lf := field.NewListField("tags", elem, field.Options{Required: true})

	errs := lf.Validate(nil)
	require.Len(t, errs, 1)

	strs, err := lf.TypecastElementsForStorage([]any{"go", "redis"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "redis"}, strs)

	vals, err := lf.TypecastElementsForRead(strs)
	require.NoError(t, err)
	assert.Equal(t, []any{"go", "redis"}, vals)
}

func TestReferenceFieldDefaults(t *testing.T) {
	rf := field.NewReferenceField("word", "Word", field.ReferenceOptions{Required: true})
	assert.Equal(t, "word_id", rf.AttName())
	assert.Equal(t, "character_set", rf.RelatedName("Character"))

	errs := rf.Validate("")
	require.Len(t, errs, 1)

	errs = rf.Validate("42")
	assert.Empty(t, errs)
}
