package jsonconv

import (
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// collectionAdapter handles slices and arrays.
type collectionAdapter struct{}

func (collectionAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func (collectionAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Kind() == reflect.Slice && v.IsNil() && ctx.Target() == nil {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	arr := arrayTarget(ctx)
	for i := 0; i < v.Len(); i++ {
		if err := appendElement(arr, v.Index(i), ctx); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// appendElement serializes ev onto arr. Elements already on the recursion path are
// skipped, as are elements whose conversion failure is suppressed.
func appendElement(arr *node.Array, ev reflect.Value, ctx *Context) error {
	if ctx.Seen(ev) {
		return nil
	}
	ectx := ctx.Index(arr.Len())
	n, err := ectx.Serialize(ev)
	if err != nil {
		return ectx.Recover(err)
	}
	if err := arr.Add(n); err != nil {
		return ectx.Fail(ev.Type(), err)
	}
	return nil
}

func (collectionAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.Kind() != reflect.Slice && d.Kind() != reflect.Array {
		return false
	}
	switch n.(type) {
	case *node.Array, *node.Object:
		return true
	}
	return false
}

func (collectionAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	items := elements(n)
	elem := d.Arg(0)
	var out reflect.Value
	if d.Kind() == reflect.Slice {
		out = reflect.MakeSlice(d.Type, len(items), len(items))
	} else {
		out = reflect.New(d.Type).Elem()
	}
	for i, item := range items {
		if i >= out.Len() {
			break
		}
		ectx := ctx.Index(i)
		ev, err := ectx.Deserialize(item, elem)
		if err != nil {
			if err = ectx.Recover(err); err != nil {
				return reflect.Value{}, err
			}
			continue
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

// elements lists an Array's items, or an Object's values in key order.
func elements(n node.Node) []node.Node {
	switch c := n.(type) {
	case *node.Array:
		return c.Items()
	case *node.Object:
		items := make([]node.Node, 0, c.Len())
		c.Range(func(_ string, child node.Node) bool {
			items = append(items, child)
			return true
		})
		return items
	}
	return nil
}

// iterableAdapter serializes iter.Seq / iter.Seq2 values and values whose All method
// returns one, such as Iterable implementations. Sequences of pairs become objects.
type iterableAdapter struct{}

// allMethod returns the sequence-returning All method of t, if any.
func allMethod(t reflect.Type) (reflect.Method, bool) {
	m, ok := t.MethodByName("All")
	if !ok || m.Type.NumIn() != 1 || m.Type.NumOut() != 1 || !typedesc.IsSeq(m.Type.Out(0)) {
		return reflect.Method{}, false
	}
	return m, true
}

func (iterableAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	if typedesc.IsSeq(v.Type()) {
		return true
	}
	_, ok := allMethod(v.Type())
	return ok
}

func (iterableAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Func) && v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	seq := v
	if v.Kind() != reflect.Func {
		m, _ := allMethod(v.Type())
		seq = m.Func.Call([]reflect.Value{v})[0]
		if seq.IsNil() {
			return ctx.Factory().NewPrimitive(nil), nil
		}
	}
	if seq.Type().In(0).NumIn() == 2 {
		var entries []mapEntry
		var err error
		rangeSeq(seq, func(k, val reflect.Value) bool {
			var ks string
			if ks, err = keyText(k, ctx); err != nil {
				return false
			}
			entries = append(entries, mapEntry{key: ks, val: val})
			return true
		})
		if err != nil {
			return nil, err
		}
		return writeEntries(entries, ctx)
	}
	arr := arrayTarget(ctx)
	var err error
	rangeSeq(seq, func(_, ev reflect.Value) bool {
		err = appendElement(arr, ev, ctx)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// rangeSeq drives a sequence held in a reflect.Value. k is invalid for iter.Seq.
func rangeSeq(seq reflect.Value, yield func(k, v reflect.Value) bool) {
	yt := seq.Type().In(0)
	fn := reflect.MakeFunc(yt, func(args []reflect.Value) []reflect.Value {
		var k, v reflect.Value
		if len(args) == 2 {
			k, v = args[0], args[1]
		} else {
			v = args[0]
		}
		return []reflect.Value{reflect.ValueOf(yield(k, v))}
	})
	seq.Call([]reflect.Value{fn})
}
