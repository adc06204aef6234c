package node

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrderAndNumbers(t *testing.T) {
	n, err := ParseString(`{"b":1,"a":[true,null,"x",12345678901234567890],"c":{"z":1.5}}`)
	require.NoError(t, err)
	obj, ok := n.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())

	a, _ := obj.Get("a")
	arr := a.(*Array)
	require.Equal(t, 4, arr.Len())
	assert.Equal(t, true, arr.At(0).(*Primitive).Value())
	assert.True(t, arr.At(1).(*Primitive).IsNull())
	assert.Equal(t, json.Number("12345678901234567890"), arr.At(3).(*Primitive).Value())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"trailing", `{"a":1} 2`},
		{"unterminated", `[1,2`},
		{"bad key", `{1:2}`},
		{"missing value", `{"a":}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMarshal_RoundTripText(t *testing.T) {
	src := `{"name":"a\"b","list":[1,2.5,-3],"nested":{"ok":false,"none":null}}`
	n, err := ParseString(src)
	require.NoError(t, err)
	out, err := Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestMarshalIndent(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Put("a", NewPrimitive(int64(1))))
	out, err := MarshalIndent(obj, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(out))
}

func TestObject_PutReplaceKeepsPosition(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Put("x", NewPrimitive("1")))
	require.NoError(t, obj.Put("y", NewPrimitive("2")))
	require.NoError(t, obj.Put("x", NewPrimitive("3")))
	assert.Equal(t, []string{"x", "y"}, obj.Keys())
	v, _ := obj.Get("x")
	assert.Equal(t, "3", v.(*Primitive).Value())

	obj.Delete("x")
	assert.Equal(t, []string{"y"}, obj.Keys())
	obj.Delete("missing")
	assert.Equal(t, 1, obj.Len())
}

func TestContainers_RejectCycles(t *testing.T) {
	outer := NewArray()
	inner := NewObject()
	require.NoError(t, outer.Add(inner))

	assert.ErrorIs(t, inner.Put("loop", outer), ErrCycle)
	assert.ErrorIs(t, outer.Add(outer), ErrCycle)
	// a clone is a different tree and may be attached
	assert.NoError(t, inner.Put("copy", outer.Clone()))
}

func TestClone_IsDeep(t *testing.T) {
	n, err := ParseString(`{"a":[1,{"b":2}]}`)
	require.NoError(t, err)
	c := n.Clone().(*Object)
	a, _ := c.Get("a")
	require.NoError(t, a.(*Array).Add(NewPrimitive("extra")))

	orig, _ := n.(*Object).Get("a")
	assert.Equal(t, 2, orig.(*Array).Len())
	assert.Equal(t, 3, a.(*Array).Len())
}

func TestUnwrap(t *testing.T) {
	n, err := Parse(strings.NewReader(`{"a":[1,"s"],"b":null}`))
	require.NoError(t, err)
	got := Unwrap(n)
	assert.Equal(t, map[string]any{"a": []any{json.Number("1"), "s"}, "b": nil}, got)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "primitive", KindPrimitive.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
