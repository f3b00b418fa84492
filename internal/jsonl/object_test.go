package jsonl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchharness/benchjson/internal/jsonl"
)

func TestObjectSet(t *testing.T) {
	obj, err := jsonl.ParseObject([]byte(`{"name": "histo", "_metadata": {"old": true}, "n": 4}`))
	require.NoError(t, err)

	require.NoError(t, obj.Set("_metadata", []byte(`{"run": 1}`)))
	require.NoError(t, obj.Set("extra", []byte(`[ 1, 2 ]`)))
	obj.SetString("note", "<ok>")

	out, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"histo","_metadata":{"run":1},"n":4,"extra":[1,2],"note":"<ok>"}`, string(out))
	assert.Equal(t, []string{"name", "_metadata", "n", "extra", "note"}, obj.Keys())
	assert.Equal(t, 5, obj.Len())
}

func TestObjectGet(t *testing.T) {
	obj, err := jsonl.ParseObject([]byte(`{"a": {"b" : 1}}`))
	require.NoError(t, err)

	value, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, `{"b":1}`, string(value))

	_, ok = obj.Get("missing")
	assert.False(t, ok)
}

func TestObjectSetRejectsInvalid(t *testing.T) {
	obj := jsonl.NewObject()
	err := obj.Set("bad", []byte(`{`))
	require.ErrorIs(t, err, jsonl.ErrInvalid)
	assert.Equal(t, 0, obj.Len())
}

func TestParseObjectRejectsArray(t *testing.T) {
	_, err := jsonl.ParseObject([]byte(`[1]`))
	require.ErrorIs(t, err, jsonl.ErrInvalid)
}

func TestParseObjectKeysUnescapedOnce(t *testing.T) {
	obj, err := jsonl.ParseObject([]byte(`{"a\\nb": 1, "dir\\": 2, "é": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{`a\nb`, `dir\`, "é"}, obj.Keys())

	value, ok := obj.Get(`dir\`)
	require.True(t, ok)
	assert.Equal(t, `2`, string(value))
}
