package jsonconv

import (
	"encoding"
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// textAdapter maps encoding.TextMarshaler / TextUnmarshaler types (uuid.UUID, net.IP,
// big.Int...) to string primitives.
type textAdapter struct{}

// MatchSerialize also accepts values whose pointer has the method, such as a big.Int.
func (textAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Type().Implements(textMarshalerType) ||
		(v.Kind() != reflect.Pointer && reflect.PointerTo(v.Type()).Implements(textMarshalerType))
}

func (textAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	if !v.Type().Implements(textMarshalerType) {
		if !v.CanAddr() {
			tmp := reflect.New(v.Type()).Elem()
			tmp.Set(v)
			v = tmp
		}
		v = v.Addr()
	}
	b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, ctx.Fail(v.Type(), err)
	}
	return ctx.Factory().NewPrimitive(string(b)), nil
}

func (textAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if _, ok := primitiveOf(n); !ok || d.IsUnknown() {
		return false
	}
	if k := d.Kind(); k == reflect.Interface || k == reflect.Pointer {
		return false
	}
	return reflect.PointerTo(d.Type).Implements(textUnmarshalerType)
}

func (textAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	p, _ := primitiveOf(n)
	s, err := toString(p.Value())
	if err != nil {
		return reflect.Value{}, ctx.Fail(d.Type, err)
	}
	pv := reflect.New(d.Type)
	if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, ctx.Fail(d.Type, err)
	}
	return pv.Elem(), nil
}
