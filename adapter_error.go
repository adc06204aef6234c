package jsonconv

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// Error types rebuilt without registration.
var builtinErrorTypes = map[string]func(string) error{
	typeName(reflect.TypeOf(errors.New(""))): errors.New,
}

// errorAdapter writes errors as "<type-name>: <message>", or the bare type name when the
// message is empty. Reading one back needs a constructor for the type name; wrapped causes
// are not preserved.
type errorAdapter struct{}

func (errorAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Type().Implements(errorType)
}

func (errorAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	text := typeName(v.Type())
	if msg := v.Interface().(error).Error(); msg != "" {
		text += ": " + msg
	}
	return ctx.Factory().NewPrimitive(text), nil
}

func errorTarget(d typedesc.Descriptor) bool {
	return d.Type == errorType || (d.Kind() != reflect.Interface && implements(d.Type, errorType))
}

func (errorAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := stringOf(n)
	return ok && errorTarget(d)
}

func (errorAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	s, _ := stringOf(n)
	name, msg, _ := strings.Cut(s, ": ")
	ctor, ok := builtinErrorTypes[name]
	if !ok {
		return reflect.Value{}, &SecurityOptOutError{Path: ctx.Path(), Type: d.Type, Name: name}
	}
	return buildError(ctor, msg, d, ctx)
}

func buildError(ctor func(string) error, msg string, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	err := ctor(msg)
	if err == nil {
		return reflect.Zero(d.Type), nil
	}
	ev := reflect.ValueOf(err)
	if !ev.Type().AssignableTo(d.Type) {
		return reflect.Value{}, ctx.Failf(d.Type, "constructor built %s", ev.Type())
	}
	return ev, nil
}

// errorTypeAdapter rebuilds one registered error type.
type errorTypeAdapter struct {
	name string
	ctor func(string) error
}

func (a errorTypeAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	s, ok := stringOf(n)
	if !ok || !errorTarget(d) {
		return false
	}
	name, _, _ := strings.Cut(s, ": ")
	return name == a.name
}

func (a errorTypeAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	s, _ := stringOf(n)
	_, msg, _ := strings.Cut(s, ": ")
	return buildError(a.ctor, msg, d, ctx)
}

// typeName is the package-qualified name of t, with a leading * per pointer level.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
