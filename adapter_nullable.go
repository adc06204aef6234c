package jsonconv

import (
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

const nullPkgPath = "github.com/aarondl/null/v8"

// nullableAdapter unwraps pointers and the {Value, Valid bool} wrappers of aarondl/null
// and database/sql. Absent values are null; present ones convert as the wrapped value.
type nullableAdapter struct{}

// isWrapper reports the two-field shape of null.String, sql.NullInt64, sql.Null[T] and friends.
func isWrapper(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Struct || t.NumField() != 2 {
		return false
	}
	if p := t.PkgPath(); p != nullPkgPath && p != "database/sql" {
		return false
	}
	valid := t.Field(1)
	return valid.Name == "Valid" && valid.Type.Kind() == reflect.Bool && t.Field(0).IsExported()
}

// plainPointer excludes node pointers, which pass through whole. Pointers with methods of
// their own are either claimed by an earlier adapter or reach their methods again through
// the addressable element.
func plainPointer(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && !t.Implements(nodeType)
}

func (nullableAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return plainPointer(v.Type()) || isWrapper(v.Type())
}

func (nullableAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ctx.Factory().NewPrimitive(nil), nil
		}
		return ctx.Serialize(v.Elem())
	}
	if !v.Field(1).Bool() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	return ctx.Serialize(v.Field(0))
}

func (nullableAdapter) MatchDeserialize(_ node.Node, d typedesc.Descriptor) bool {
	return !d.IsUnknown() && (plainPointer(d.Type) || isWrapper(d.Type))
}

func (nullableAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	if d.Kind() == reflect.Pointer {
		ev, err := ctx.Deserialize(n, d.Arg(0))
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(d.Type.Elem())
		p.Elem().Set(ev)
		return p, nil
	}
	out := reflect.New(d.Type).Elem()
	ev, err := ctx.Deserialize(n, typedesc.Describe(d.Type.Field(0).Type))
	if err != nil {
		return reflect.Value{}, err
	}
	out.Field(0).Set(ev)
	out.Field(1).SetBool(true)
	return out, nil
}
