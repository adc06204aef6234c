package jsonconv

import (
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// defaultAdapter closes every search. Nodes pass through as clones; a string aimed at a
// structured target is read as an embedded JSON document.
type defaultAdapter struct{}

func (defaultAdapter) MatchSerialize(reflect.Value, *Context) bool { return true }

func (defaultAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Type().Implements(nodeType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return ctx.Factory().NewPrimitive(nil), nil
		}
		return v.Interface().(node.Node).Clone(), nil
	}
	return nil, ctx.Unsupported(v.Type(), nil)
}

func (defaultAdapter) MatchDeserialize(node.Node, typedesc.Descriptor) bool { return true }

func (defaultAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	if isNodeType(d.Type) {
		cv := reflect.ValueOf(n.Clone())
		if !cv.Type().AssignableTo(d.Type) {
			return reflect.Value{}, ctx.Failf(d.Type, "cannot hold %s node", n.Kind())
		}
		return cv, nil
	}
	if s, ok := stringOf(n); ok && nestedKind(d.Kind()) {
		doc, err := node.ParseString(s)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		return ctx.Deserialize(doc, d)
	}
	if convertibleKind(d.Kind()) {
		return reflect.Value{}, ctx.Failf(d.Type, "cannot convert %s node", n.Kind())
	}
	return reflect.Value{}, ctx.Unsupported(d.Type, n)
}

func nestedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// convertibleKind reports kinds some built-in adapter converts given a suitable node.
func convertibleKind(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128,
		reflect.UnsafePointer, reflect.Uintptr, reflect.Interface, reflect.Invalid:
		return false
	}
	return true
}

// anyAdapter passes the raw tree through for Unknown targets.
type anyAdapter struct{}

func (anyAdapter) MatchDeserialize(_ node.Node, d typedesc.Descriptor) bool { return d.IsUnknown() }

func (anyAdapter) Deserialize(n node.Node, _ typedesc.Descriptor, _ *Context) (reflect.Value, error) {
	return reflect.ValueOf(node.Unwrap(n)), nil
}

// nullAdapter maps JSON null to the zero value of any typed target.
type nullAdapter struct{}

func (nullAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	return !d.IsUnknown() && isNull(n) && !isNodeType(d.Type)
}

func (nullAdapter) Deserialize(_ node.Node, d typedesc.Descriptor, _ *Context) (reflect.Value, error) {
	return reflect.Zero(d.Type), nil
}
