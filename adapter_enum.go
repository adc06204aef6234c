package jsonconv

import (
	"fmt"
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// enumAdapter converts the declared values of one enumeration type by their String names.
// Deserialization also accepts the declaration index.
type enumAdapter struct {
	typ    reflect.Type
	names  map[any]string
	values map[string]reflect.Value
	order  []reflect.Value
}

func newEnumAdapter(values []fmt.Stringer) (*enumAdapter, error) {
	if len(values) == 0 || values[0] == nil {
		return nil, fmt.Errorf("jsonconv: enum registration needs at least one value")
	}
	typ := reflect.TypeOf(values[0])
	if !typ.Comparable() {
		return nil, fmt.Errorf("jsonconv: enum type %s is not comparable", typ)
	}
	a := &enumAdapter{
		typ:    typ,
		names:  make(map[any]string, len(values)),
		values: make(map[string]reflect.Value, len(values)),
		order:  make([]reflect.Value, 0, len(values)),
	}
	for _, v := range values {
		if reflect.TypeOf(v) != typ {
			return nil, fmt.Errorf("jsonconv: enum values mix %s and %T", typ, v)
		}
		name := v.String()
		if _, dup := a.values[name]; dup {
			return nil, fmt.Errorf("jsonconv: enum %s declares %q twice", typ, name)
		}
		rv := reflect.ValueOf(v)
		a.names[v] = name
		a.values[name] = rv
		a.order = append(a.order, rv)
	}
	return a, nil
}

func (a *enumAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Type() == a.typ }

func (a *enumAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	name, ok := a.names[v.Interface()]
	if !ok {
		return nil, ctx.Failf(a.typ, "%v is not a declared value", v.Interface())
	}
	return ctx.Factory().NewPrimitive(name), nil
}

func (a *enumAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := primitiveOf(n)
	return ok && d.Type == a.typ
}

func (a *enumAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	p, _ := primitiveOf(n)
	if s, ok := p.Value().(string); ok {
		v, ok := a.values[s]
		if !ok {
			return reflect.Value{}, ctx.Failf(a.typ, "no value named %q", s)
		}
		return v, nil
	}
	i, err := toInt64(p.Value())
	if err != nil {
		return reflect.Value{}, ctx.Fail(a.typ, err)
	}
	if i < 0 || i >= int64(len(a.order)) {
		return reflect.Value{}, ctx.Failf(a.typ, "index %d out of range", i)
	}
	return a.order[i], nil
}
