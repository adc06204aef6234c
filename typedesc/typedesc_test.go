package typedesc

import (
	"iter"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair[K comparable, V any] struct {
	Key   K
	Value V
}

func (pair[K, V]) TypeArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[K](), reflect.TypeFor[V]()}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"nil", nil, "unknown"},
		{"any", reflect.TypeFor[any](), "unknown"},
		{"scalar", reflect.TypeFor[int](), "int"},
		{"slice", reflect.TypeFor[[]string](), "[]string<string>"},
		{"array", reflect.TypeFor[[2]int](), "[2]int<int>"},
		{"map", reflect.TypeFor[map[string][]int](), "map[string][]int<string,[]int<int>>"},
		{"pointer", reflect.TypeFor[*int](), "*int<int>"},
		{"untyped slice", reflect.TypeFor[[]any](), "[]interface {}<unknown>"},
		{"seq", reflect.TypeFor[iter.Seq[int]](), "iter.Seq[int]<int>"},
		{"seq2", reflect.TypeFor[iter.Seq2[string, bool]](), "iter.Seq2[string,bool]<string,bool>"},
		{"parameterized", reflect.TypeFor[pair[string, int]](), "typedesc.pair[string,int]<string,int>"},
		{"error", reflect.TypeFor[error](), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.typ).String())
		})
	}
}

func TestDescriptor_ArgOutOfRangeIsUnknown(t *testing.T) {
	d := Of[[]int]()
	assert.False(t, d.IsUnknown())
	assert.Equal(t, reflect.Int, d.Arg(0).Kind())
	assert.True(t, d.Arg(1).IsUnknown())
	assert.True(t, Of[int]().Arg(0).IsUnknown())
	assert.Equal(t, reflect.Interface, Unknown.Kind())
}

func TestDescriptor_ZeroAndNew(t *testing.T) {
	assert.Equal(t, 0, Of[int]().Zero().Interface())
	v := Of[string]().New()
	assert.True(t, v.CanSet())
	v.SetString("x")
	assert.Equal(t, "x", v.Interface())

	u := Unknown.New()
	assert.True(t, u.CanSet())
	assert.Equal(t, reflect.Interface, u.Kind())
}

func TestIsSeq(t *testing.T) {
	assert.True(t, IsSeq(reflect.TypeFor[iter.Seq[int]]()))
	assert.True(t, IsSeq(reflect.TypeFor[func(func(string) bool)]()))
	assert.False(t, IsSeq(reflect.TypeFor[func(int) bool]()))
	assert.False(t, IsSeq(reflect.TypeFor[func()]()))
	assert.False(t, IsSeq(nil))
}
