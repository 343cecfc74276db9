package jsonbuilder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCommitRendering mirrors showContentToJSON's shape for a decoded
// commit (cmd-show.go): tree, ordered parents, nested author/committer,
// trailing message, all in field-insertion order.
func TestCommitRendering(t *testing.T) {
	parents := NewArray().AddString("c19ff598000000000000000000000000000000000")
	obj := NewObject().
		String("tree", "f1b66dcca490b5c4455af319bc961a34f69c72c2").
		Array("parents", parents).
		Object("author", NewObject().
			String("name", "Audris Mockus <audris@utk.edu>").
			String("timestamp", "1410029988").
			String("timezone", "-0400")).
		Object("committer", NewObject().
			String("name", "Audris Mockus <audris@utk.edu>").
			String("timestamp", "1410029988").
			String("timezone", "-0400")).
		String("message", "News for Sep 5, 2014\n")

	expected := `{
		"tree": "f1b66dcca490b5c4455af319bc961a34f69c72c2",
		"parents": ["c19ff598000000000000000000000000000000000"],
		"author": {"name": "Audris Mockus <audris@utk.edu>", "timestamp": "1410029988", "timezone": "-0400"},
		"committer": {"name": "Audris Mockus <audris@utk.edu>", "timestamp": "1410029988", "timezone": "-0400"},
		"message": "News for Sep 5, 2014\n"
	}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

// TestTreeEntryRendering mirrors showContentToJSON's array-of-objects shape
// for a decoded tree (one object per TreeEntry, field order mode/filename/hash).
func TestTreeEntryRendering(t *testing.T) {
	arr := NewArray().
		AddObject(NewObject().
			String("mode", "100644").
			String("filename", ".gitignore").
			String("hash", "8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e")).
		AddObject(NewObject().
			String("mode", "40000").
			String("filename", "src").
			String("hash", "0101010101010101010101010101010101010101"))

	obj := NewObject().Array("entries", arr)

	expected := `{
		"entries": [
			{"mode": "100644", "filename": ".gitignore", "hash": "8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e8e"},
			{"mode": "40000", "filename": "src", "hash": "0101010101010101010101010101010101010101"}
		]
	}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

// TestShRecordRendering mirrors valueToJSON's "sh" tag rendering.
func TestShRecordRendering(t *testing.T) {
	obj := NewObject().
		String("time", "1410029988").
		String("author", "Audris Mockus").
		String("hash", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	expected := `{"time":"1410029988","author":"Audris Mockus","hash":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

// TestPointerRendering mirrors valueToJSON's "r" tag rendering, including
// the uint64 offset/length fields (Uint, not Int).
func TestPointerRendering(t *testing.T) {
	obj := NewObject().
		String("hash", "0707070707070707070707070707070707070707").
		Uint("offset", 128).
		Uint("length", 256)

	expected := `{"hash":"0707070707070707070707070707070707070707","offset":128,"length":256}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

// TestValuesArrayRendering mirrors valueToJSON's default []string ("h", "s",
// "cs") rendering: a single "values" array field wrapping a string list.
func TestValuesArrayRendering(t *testing.T) {
	arr := NewArray().AddString("alpha").AddString("beta").AddString("gamma")
	obj := NewObject().Array("values", arr)

	expected := `{"values":["alpha","beta","gamma"]}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

// TestTriplesArrayRendering mirrors valueToJSON's [][3]string ("cs3")
// rendering: one {a,b,c} object per triple.
func TestTriplesArrayRendering(t *testing.T) {
	arr := NewArray().
		AddObject(NewObject().String("a", "alpha").String("b", "beta").String("c", "gamma"))
	obj := NewObject().Array("values", arr)

	expected := `{"values":[{"a":"alpha","b":"beta","c":"gamma"}]}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

func TestOrderPreservation(t *testing.T) {
	// Field order is only observable in the raw byte stream (decoding into
	// a map would lose it), so assert on the marshaled bytes directly.
	obj := NewObject().
		String("tree", "1").
		String("parents", "2").
		String("author", "3")

	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"tree":"1","parents":"2","author":"3"}`, string(result))
}

func TestEmptyObjectAndArray(t *testing.T) {
	objResult, err := json.Marshal(NewObject())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(objResult))

	arrResult, err := NewArray().MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(arrResult))
}

func TestNullField(t *testing.T) {
	obj := NewObject().
		String("hash", "deadbeef").
		Null("parent")

	expected := `{"hash":"deadbeef","parent":null}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

func TestApplyIfSkipsWhenFalse(t *testing.T) {
	obj := NewObject().
		String("hash", "deadbeef").
		ApplyIf(false, func(o *OrderedJSONObject) {
			o.String("encoding", "should-not-appear")
		})

	expected := `{"hash":"deadbeef"}`
	result, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(result))
}

func TestInvalidValueReturnsWrappedError(t *testing.T) {
	obj := NewObject().Value("bad", make(chan int))
	_, err := json.Marshal(obj)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `failed to marshal value for key "bad"`)
}
