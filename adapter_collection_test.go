package jsonconv

import (
	"iter"
	"maps"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Station-Manager/jsonconv/node"
)

func TestCollection_EmptyAndNil(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty slice", []int{}, "[]"},
		{"nil slice", []int(nil), "null"},
		{"empty map", map[string]int{}, "{}"},
		{"nil map", map[string]int(nil), "null"},
		{"array", [3]int{1, 2, 3}, "[1,2,3]"},
		{"nested", [][]string{{"a"}, {}}, `[["a"],[]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.Serialize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, jsonOf(t, n))
		})
	}
}

func TestCollection_Deserialize(t *testing.T) {
	e := New()

	got, err := DeserializeTo[[]int](e, mustParse(t, `[]`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = DeserializeTo[[]int](e, mustParse(t, `null`))
	require.NoError(t, err)
	assert.Nil(t, got)

	arr, err := DeserializeTo[[3]int](e, mustParse(t, `[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 0}, arr)

	arr, err = DeserializeTo[[3]int](e, mustParse(t, `[1,2,3,4]`))
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 3}, arr)

	got, err = DeserializeTo[[]int](e, mustParse(t, `{"b":2,"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)

	anyList, err := DeserializeTo[[]any](e, mustParse(t, `[1,"a",null]`))
	require.NoError(t, err)
	assert.Len(t, anyList, 3)
	assert.Equal(t, "a", anyList[1])
	assert.Nil(t, anyList[2])
}

func TestMap_SortedKeys(t *testing.T) {
	e := New()
	n, err := e.Serialize(map[int]string{3: "c", 1: "a", 20: "t"})
	require.NoError(t, err)
	assert.Equal(t, `{"1":"a","20":"t","3":"c"}`, jsonOf(t, n))

	n, err = e.Serialize(map[bool]int{true: 1, false: 0})
	require.NoError(t, err)
	assert.Equal(t, `{"false":0,"true":1}`, jsonOf(t, n))

	n, err = e.Serialize(map[string]int{"b": 1, "a": 2}, WithKeyOrdering(KeyOrderNatural))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, n.(*node.Object).Keys())
}

func TestMap_KeyConversion(t *testing.T) {
	e := New()
	got, err := DeserializeTo[map[int]string](e, mustParse(t, `{"1":"a","2":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, got)

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	n, err := e.Serialize(map[uuid.UUID]int{id: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"6ba7b810-9dad-11d1-80b4-00c04fd430c8":1}`, jsonOf(t, n))

	back, err := DeserializeTo[map[uuid.UUID]int](e, n)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{id: 1}, back)

	_, err = e.Serialize(map[Point]int{{Lat: 1}: 1})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = DeserializeTo[map[int]string](e, mustParse(t, `{"x":"a"}`))
	assert.ErrorIs(t, err, ErrConversionFailure)
}

func TestMap_ArrayOfEntries(t *testing.T) {
	e := New()
	got, err := DeserializeTo[map[string]int](e, mustParse(t, `[{"a":1},{"b":2,"c":3}]`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, got)

	_, err = DeserializeTo[map[string]int](e, mustParse(t, `[{"a":1},3]`))
	assert.ErrorIs(t, err, ErrConversionFailure)

	arr := node.NewArray()
	require.NoError(t, e.SerializeInto(map[string]int{"b": 2, "a": 1}, arr))
	assert.Equal(t, `[{"a":1},{"b":2}]`, jsonOf(t, arr))
}

func TestCycleGuard_SelfContainingSlice(t *testing.T) {
	e := New()
	s := make([]any, 2)
	s[0] = 1
	s[1] = s
	n, err := e.Serialize(s)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, jsonOf(t, n))
}

func TestCycleGuard_SelfContainingMap(t *testing.T) {
	e := New()
	m := map[string]any{"a": 1}
	m["self"] = m
	n, err := e.Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, jsonOf(t, n))
}

type ring struct {
	Name string `json:"name"`
	Next *ring  `json:"next"`
}

func TestCycleGuard_ThreeLevels(t *testing.T) {
	e := New()
	a, b, c := &ring{Name: "a"}, &ring{Name: "b"}, &ring{Name: "c"}
	a.Next, b.Next, c.Next = b, c, a

	n, err := e.Serialize(a)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a","next":{"name":"b","next":{"name":"c"}}}`, jsonOf(t, n))

	n, err = e.Serialize(b)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"b","next":{"name":"c","next":{"name":"a"}}}`, jsonOf(t, n))
}

func TestCycleGuard_SharedReferenceIsNotACycle(t *testing.T) {
	type pair struct {
		Home *address `json:"home"`
		Work *address `json:"work"`
	}
	e := New()
	shared := &address{Street: "s", City: "c"}
	n, err := e.Serialize(pair{Home: shared, Work: shared})
	require.NoError(t, err)
	assert.Equal(t, `{"home":{"street":"s","city":"c"},"work":{"street":"s","city":"c"}}`, jsonOf(t, n))

	list := []*address{shared, shared}
	n, err = e.Serialize(list)
	require.NoError(t, err)
	assert.Equal(t, 2, n.(*node.Array).Len())
}

type bag struct {
	items []any
}

func (b bag) All() iter.Seq[any] { return slices.Values(b.items) }

func TestIterable_Sequences(t *testing.T) {
	e := New()

	n, err := e.Serialize(slices.Values([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, jsonOf(t, n))

	n, err = e.Serialize(slices.All([]string{"x", "y"}))
	require.NoError(t, err)
	assert.Equal(t, `{"0":"x","1":"y"}`, jsonOf(t, n))

	n, err = e.Serialize(maps.All(map[string]int{"only": 1}))
	require.NoError(t, err)
	assert.Equal(t, `{"only":1}`, jsonOf(t, n))

	n, err = e.Serialize(bag{items: []any{1, "two", nil}})
	require.NoError(t, err)
	assert.Equal(t, `[1,"two",null]`, jsonOf(t, n))

	var it Iterable = bag{items: []any{true}}
	n, err = e.Serialize(it)
	require.NoError(t, err)
	assert.Equal(t, `[true]`, jsonOf(t, n))

	n, err = e.Serialize(iter.Seq[int](nil))
	require.NoError(t, err)
	assert.Equal(t, `null`, jsonOf(t, n))
}

func TestDistinctBy_Entries(t *testing.T) {
	e := New()
	entries := []Entry[int, int]{{1, 1}, {1, 2}, {2, 1}, {2, 2}}

	byKey := DistinctBy(slices.Values(entries), func(x Entry[int, int]) int { return x.Key })
	n, err := e.Serialize(byKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"1":1},{"2":1}]`, jsonOf(t, n))

	byValue := DistinctBy(slices.Values(entries), func(x Entry[int, int]) int { return x.Value })
	n, err = e.Serialize(byValue)
	require.NoError(t, err)
	assert.Equal(t, `[{"1":1},{"1":2}]`, jsonOf(t, n))

	firstTwo := 0
	for range DistinctBy(slices.Values([]int{1, 1, 2, 3}), func(x int) int { return x }) {
		firstTwo++
		if firstTwo == 2 {
			break
		}
	}
	assert.Equal(t, 2, firstTwo)
}

func TestEntry_Forms(t *testing.T) {
	e := New()

	n, err := e.Serialize(NewEntry("k", 5))
	require.NoError(t, err)
	assert.Equal(t, `{"k":5}`, jsonOf(t, n))

	got, err := DeserializeTo[Entry[string, int]](e, n)
	require.NoError(t, err)
	assert.Equal(t, NewEntry("k", 5), got)

	got, err = DeserializeTo[Entry[string, int]](e, mustParse(t, `{"key":"k","value":5}`))
	require.NoError(t, err)
	assert.Equal(t, NewEntry("k", 5), got)

	_, err = DeserializeTo[Entry[string, int]](e, mustParse(t, `{"a":1,"b":2}`))
	assert.ErrorIs(t, err, ErrConversionFailure)

	obj := node.NewObject()
	require.NoError(t, e.SerializeInto(NewEntry(7, "seven"), obj))
	assert.Equal(t, `{"7":"seven"}`, jsonOf(t, obj))

	list, err := DeserializeTo[[]Entry[int, string]](e, mustParse(t, `[{"1":"a"},{"2":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Entry[int, string]{NewEntry(1, "a"), NewEntry(2, "b")}, list)
}

func TestTuple_RoundTrip(t *testing.T) {
	e := New()
	tup := NewTuple("a", int64(2), true, nil)

	n, err := e.Serialize(tup)
	require.NoError(t, err)
	assert.Equal(t, `["a",2,true,null]`, jsonOf(t, n))

	got, err := DeserializeTo[Tuple](e, n)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
	assert.Equal(t, []any{"a", int64(2), true, nil}, got.Members())
	assert.Equal(t, "a", got.Get(0))

	members := []any{"x"}
	cloned := NewTuple(members...)
	members[0] = "changed"
	assert.Equal(t, "x", cloned.Get(0))

	v, err := e.Deserialize(mustParse(t, `{"a":1}`), reflect.TypeFor[Tuple]())
	assert.Nil(t, v)
	assert.Error(t, err)
}

func TestKeys_RegisteredTypes(t *testing.T) {
	e := New()
	require.NoError(t, e.RegisterEnum(band160, band80, band20))
	require.NoError(t, e.Register(shoutAdapter{}))

	tests := []struct {
		name string
		in   any
		want string
		typ  reflect.Type
		back any
	}{
		{
			name: "enum map",
			in:   map[band]int{band80: 2, band20: 5},
			want: `{"20m":5,"80m":2}`,
			typ:  reflect.TypeFor[map[band]int](),
			back: map[band]int{band80: 2, band20: 5},
		},
		{
			name: "enum entry",
			in:   NewEntry(band160, 1),
			want: `{"160m":1}`,
			typ:  reflect.TypeFor[Entry[band, int]](),
			back: NewEntry(band160, 1),
		},
		{
			name: "enum pair sequence",
			in:   maps.All(map[band]string{band80: "night"}),
			want: `{"80m":"night"}`,
			typ:  reflect.TypeFor[map[band]string](),
			back: map[band]string{band80: "night"},
		},
		{
			name: "user serializer key",
			in:   map[shout]int{"dx": 1},
			want: `{"DX":1}`,
			typ:  reflect.TypeFor[map[shout]int](),
			back: map[shout]int{"dx": 1},
		},
		{
			name: "plain ints unchanged",
			in:   map[int]bool{2: true, 10: false},
			want: `{"10":false,"2":true}`,
			typ:  reflect.TypeFor[map[int]bool](),
			back: map[int]bool{2: true, 10: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.Serialize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, jsonOf(t, n))

			got, err := e.Deserialize(n, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.back, got)
		})
	}
}

func TestKeys_TimeKeepsTextForm(t *testing.T) {
	e := New()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	n, err := e.Serialize(map[time.Time]int{ts: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"2024-01-02T03:04:05Z":1}`, jsonOf(t, n))

	got, err := DeserializeTo[map[time.Time]int](e, n)
	require.NoError(t, err)
	require.Len(t, got, 1)
	for k, v := range got {
		assert.True(t, ts.Equal(k))
		assert.Equal(t, 1, v)
	}
}

func TestKeys_UndeclaredEnumValueFails(t *testing.T) {
	e := New()
	require.NoError(t, e.RegisterEnum(band160, band80))

	_, err := e.Serialize(map[band]int{band20: 1})
	assert.ErrorIs(t, err, ErrConversionFailure)

	_, err = e.Serialize(NewEntry(band20, 1))
	assert.ErrorIs(t, err, ErrConversionFailure)
}

func TestArrayTarget_Appends(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"entry", NewEntry("a", 1), `["head",{"a":1}]`},
		{"tuple", NewTuple("x", int64(2)), `["head","x",2]`},
		{"bitmap", roaring.BitmapOf(9, 4), `["head",4,9]`},
		{"sequence", slices.Values([]int{7, 8}), `["head",7,8]`},
		{"pair sequence", maps.All(map[string]int{"k": 1}), `["head",{"k":1}]`},
		{"byte values", []byte("hi"), `["head",104,105]`},
		{"map", map[string]int{"b": 2, "a": 1}, `["head",{"a":1},{"b":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := node.NewArray()
			require.NoError(t, arr.Add(node.NewPrimitive("head")))
			require.NoError(t, e.SerializeInto(tt.in, arr))
			assert.Equal(t, tt.want, jsonOf(t, arr))
		})
	}
}
