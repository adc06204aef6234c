package jsonconv

import (
	"reflect"
	"slices"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// Entry is a key/value pair. It serializes as the single-pair object {key: value}.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

func NewEntry[K comparable, V any](k K, v V) Entry[K, V] { return Entry[K, V]{Key: k, Value: v} }

func (Entry[K, V]) TypeArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[K](), reflect.TypeFor[V]()}
}

func (Entry[K, V]) isEntry() {}

type entryMarker interface{ isEntry() }

var entryMarkerType = reflect.TypeFor[entryMarker]()

// entryAdapter handles Entry values. An Object target receives the pair directly; an
// Array target gets it appended as a one-key object.
type entryAdapter struct{}

func (entryAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Kind() == reflect.Struct && v.Type().Implements(entryMarkerType)
}

func (entryAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	key, err := keyText(v.Field(0), ctx)
	if err != nil {
		return nil, err
	}
	vctx := ctx.At(key)
	val, err := vctx.Serialize(v.Field(1))
	if err != nil {
		return nil, err
	}
	out := ctx.Target()
	switch t := out.(type) {
	case *node.Object:
		err = t.Put(key, val)
	case *node.Array:
		pair := ctx.Factory().NewObject()
		if err = pair.Put(key, val); err == nil {
			err = t.Add(pair)
		}
	default:
		pair := ctx.Factory().NewObject()
		err = pair.Put(key, val)
		out = pair
	}
	if err != nil {
		return nil, vctx.Fail(v.Type(), err)
	}
	return out, nil
}

func (entryAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := n.(*node.Object)
	return ok && d.Kind() == reflect.Struct && implements(d.Type, entryMarkerType)
}

// Deserialize reads the single-pair form first, then {"key": ..., "value": ...}.
func (entryAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	obj := n.(*node.Object)
	var keyN, valN node.Node
	if obj.Len() == 1 {
		k := obj.Keys()[0]
		keyN = ctx.Factory().NewPrimitive(k)
		valN, _ = obj.Get(k)
	} else {
		kn, hasKey := obj.Get("key")
		vn, hasVal := obj.Get("value")
		if !hasKey || !hasVal {
			return reflect.Value{}, ctx.Failf(d.Type, "object with %d keys is not an entry", obj.Len())
		}
		keyN, valN = kn, vn
	}
	kv, err := ctx.At("key").Deserialize(keyN, d.Arg(0))
	if err != nil {
		return reflect.Value{}, err
	}
	vv, err := ctx.At("value").Deserialize(valN, d.Arg(1))
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(d.Type).Elem()
	out.Field(0).Set(kv)
	out.Field(1).Set(vv)
	return out, nil
}

// Tuple is a fixed sequence of heterogeneous members, written as a JSON array.
type Tuple struct {
	members []any
}

func NewTuple(members ...any) Tuple { return Tuple{members: slices.Clone(members)} }

func (t Tuple) Len() int       { return len(t.members) }
func (t Tuple) Get(i int) any  { return t.members[i] }
func (t Tuple) Members() []any { return slices.Clone(t.members) }

var tupleType = reflect.TypeFor[Tuple]()

type tupleAdapter struct{}

func (tupleAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Type() == tupleType }

func (tupleAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	arr := arrayTarget(ctx)
	for _, m := range v.Interface().(Tuple).members {
		if err := appendElement(arr, reflect.ValueOf(m), ctx); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func (tupleAdapter) MatchDeserialize(_ node.Node, d typedesc.Descriptor) bool { return d.Type == tupleType }

// Deserialize decodes members without type information, so numbers come back as
// json.Number when they were read from text.
func (tupleAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	arr, ok := n.(*node.Array)
	if !ok {
		return reflect.Value{}, ctx.Failf(d.Type, "tuple needs an array, got %s", n.Kind())
	}
	items := arr.Items()
	members := make([]any, len(items))
	for i, item := range items {
		mv, err := ctx.Index(i).Deserialize(item, typedesc.Unknown)
		if err != nil {
			return reflect.Value{}, err
		}
		if mv.IsValid() && mv.CanInterface() {
			members[i] = mv.Interface()
		}
	}
	return reflect.ValueOf(Tuple{members: members}), nil
}
