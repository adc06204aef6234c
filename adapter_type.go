package jsonconv

import (
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// typeAdapter writes reflect.Type values as their qualified name. Reading a name back is
// refused unless the type was enabled with AllowTypes, which registers a typeResolver.
type typeAdapter struct{}

func (typeAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Type().Implements(reflectTypeType)
}

func (typeAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	return ctx.Factory().NewPrimitive(typeName(v.Interface().(reflect.Type))), nil
}

func (typeAdapter) MatchDeserialize(_ node.Node, d typedesc.Descriptor) bool {
	return d.Type == reflectTypeType
}

func (typeAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	name, ok := stringOf(n)
	if !ok {
		return reflect.Value{}, ctx.Failf(d.Type, "type name must be a string, got %s", n.Kind())
	}
	return reflect.Value{}, &SecurityOptOutError{Path: ctx.Path(), Type: d.Type, Name: name}
}

type typeResolver struct {
	byName map[string]reflect.Type
}

func (r typeResolver) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.Type != reflectTypeType {
		return false
	}
	name, ok := stringOf(n)
	if !ok {
		return false
	}
	_, ok = r.byName[name]
	return ok
}

func (r typeResolver) Deserialize(n node.Node, _ typedesc.Descriptor, _ *Context) (reflect.Value, error) {
	name, _ := stringOf(n)
	return reflect.ValueOf(r.byName[name]), nil
}
