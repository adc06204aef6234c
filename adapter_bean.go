package jsonconv

import (
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// beanAdapter converts structs through their exported fields.
//
// Field keys follow json tags, falling back to the Go name. Exported embedded structs are
// flattened. The jsonconv tag adds:
//
//	jsonconv:"-"            skip the field (also "ignore")
//	jsonconv:"inline"       merge the field's object form into the parent object
//	jsonconv:"alias=a|b"    extra keys accepted when deserializing
//	jsonconv:"omitempty"    skip zero values when serializing
type beanAdapter struct{}

func (beanAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Kind() == reflect.Struct }

func (beanAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	obj := objectTarget(ctx)
	meta := ctx.engine.getOrBuildMetadata(v.Type())
	for i := range meta.fields {
		fi := &meta.fields[i]
		if fi.ignore {
			continue
		}
		fv, ok := safeFieldByIndex(v, fi.index)
		if !ok || (fi.omitEmpty && fv.IsZero()) || ctx.Seen(fv) {
			continue
		}
		key := fi.key()
		if owner := meta.lookup(key, false); owner != nil && owner != fi {
			continue // shadowed by a shallower field
		}
		fctx := ctx.At(key)
		if fi.inline {
			fctx = fctx.WithTarget(obj)
		}
		n, err := fctx.Serialize(fv)
		if err != nil {
			if err = fctx.Recover(err); err != nil {
				return nil, err
			}
			continue
		}
		if n == obj {
			continue
		}
		if ctx.cfg.IgnoreNullFields && isNull(n) {
			continue
		}
		if err := obj.Put(key, n); err != nil {
			return nil, fctx.Fail(fi.typ, err)
		}
	}
	return obj, nil
}

func (beanAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := n.(*node.Object)
	return ok && d.Kind() == reflect.Struct
}

func (beanAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	obj := n.(*node.Object)
	out := reflect.New(d.Type).Elem()
	meta := ctx.engine.getOrBuildMetadata(d.Type)
	set := func(fi *fieldInfo, fctx *Context, child node.Node) error {
		fv, err := fctx.Deserialize(child, typedesc.Describe(fi.typ))
		if err != nil {
			return fctx.Recover(err)
		}
		fieldByIndexAlloc(out, fi.index).Set(fv)
		return nil
	}
	for _, key := range obj.Keys() {
		fi := meta.lookup(key, ctx.cfg.CaseInsensitiveKeys)
		if fi == nil || fi.inline {
			continue
		}
		child, _ := obj.Get(key)
		if err := set(fi, ctx.At(key), child); err != nil {
			return reflect.Value{}, err
		}
	}
	for i := range meta.fields {
		fi := &meta.fields[i]
		if !fi.inline || fi.ignore {
			continue
		}
		src := node.Node(obj)
		if child, ok := obj.Get(fi.key()); ok {
			src = child
		}
		if err := set(fi, ctx.At(fi.key()), src); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}
