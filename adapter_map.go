package jsonconv

import (
	"cmp"
	"encoding"
	"reflect"
	"slices"
	"strconv"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// mapAdapter converts maps to objects keyed by the string form of their keys. Offered an
// Array target it appends one single-key object per entry instead.
type mapAdapter struct{}

type mapEntry struct {
	key string
	val reflect.Value
}

// keyString renders a map key. Strings are used as is, then TextMarshaler, then numbers
// and bools in their canonical text.
func keyString(k reflect.Value) (string, bool) {
	k = indirectInterface(k)
	if !k.IsValid() {
		return "", false
	}
	if k.Kind() == reflect.String {
		return k.String(), true
	}
	if k.Type().Implements(textMarshalerType) {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", false
		}
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err == nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), true
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), true
	}
	return "", false
}

// keyText renders a key through the registry so registered key types keep their names.
// A string result is used as is. Any other scalar gives way to the key's canonical text,
// so a time.Time key stays RFC 3339 rather than epoch milliseconds.
func keyText(k reflect.Value, ctx *Context) (string, error) {
	n, err := ctx.Serialize(k)
	if err != nil {
		return "", err
	}
	if p, ok := primitiveOf(n); ok && !p.IsNull() {
		if s, ok := p.Value().(string); ok {
			return s, nil
		}
		if s, ok := keyString(k); ok {
			return s, nil
		}
		if s, err := toString(p.Value()); err == nil {
			return s, nil
		}
	}
	return "", ctx.Unsupported(k.Type(), nil)
}

func (mapAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Kind() == reflect.Map }

func (mapAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.IsNil() && ctx.Target() == nil {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		ks, err := keyText(iter.Key(), ctx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, mapEntry{key: ks, val: iter.Value()})
	}
	if ctx.cfg.KeyOrdering == KeyOrderSorted {
		slices.SortFunc(entries, func(a, b mapEntry) int { return cmp.Compare(a.key, b.key) })
	}
	return writeEntries(entries, ctx)
}

// writeEntries emits entries into the context's target, or a new Object.
func writeEntries(entries []mapEntry, ctx *Context) (node.Node, error) {
	arr, toArray := ctx.Target().(*node.Array)
	var obj *node.Object
	if !toArray {
		obj = objectTarget(ctx)
	}
	for _, e := range entries {
		if ctx.Seen(e.val) {
			continue
		}
		ectx := ctx.At(e.key)
		n, err := ectx.Serialize(e.val)
		if err != nil {
			if err = ectx.Recover(err); err != nil {
				return nil, err
			}
			continue
		}
		if toArray {
			pair := ctx.Factory().NewObject()
			if err = pair.Put(e.key, n); err == nil {
				err = arr.Add(pair)
			}
		} else {
			err = obj.Put(e.key, n)
		}
		if err != nil {
			return nil, ectx.Fail(e.val.Type(), err)
		}
	}
	if toArray {
		return arr, nil
	}
	return obj, nil
}

func (mapAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.Kind() != reflect.Map {
		return false
	}
	switch n.(type) {
	case *node.Object, *node.Array:
		return true
	}
	return false
}

// Deserialize reads an Object, or an Array of objects whose pairs are merged in order.
func (mapAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	out := reflect.MakeMap(d.Type)
	keyD, valD := d.Arg(0), d.Arg(1)
	put := func(key string, child node.Node) error {
		ectx := ctx.At(key)
		kv, err := ectx.Deserialize(ctx.Factory().NewPrimitive(key), keyD)
		if err == nil {
			var vv reflect.Value
			if vv, err = ectx.Deserialize(child, valD); err == nil {
				out.SetMapIndex(kv, vv)
				return nil
			}
		}
		return ectx.Recover(err)
	}
	var err error
	switch c := n.(type) {
	case *node.Object:
		c.Range(func(key string, child node.Node) bool {
			err = put(key, child)
			return err == nil
		})
	case *node.Array:
		for i, item := range c.Items() {
			pair, ok := item.(*node.Object)
			if !ok {
				ectx := ctx.Index(i)
				if err = ectx.Recover(ectx.Failf(d.Type, "entry is a %s, not an object", item.Kind())); err != nil {
					break
				}
				continue
			}
			pair.Range(func(key string, child node.Node) bool {
				err = put(key, child)
				return err == nil
			})
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}
