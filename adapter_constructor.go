package jsonconv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// constructorAdapter builds values whose fields cannot be set one by one, by calling a
// registered function with arguments taken from an Object by name.
//
// When the type has an exported, argument-less accessor for every parameter, matched by
// name ignoring case (Amount for "amount"), it serializes through them as well. Otherwise
// the type keeps serializing by its fields.
type constructorAdapter struct {
	fn      reflect.Value
	typ     reflect.Type
	params  []string
	args    []typedesc.Descriptor
	getters []reflect.Method
}

func newConstructorAdapter(fn any, params []string) (*constructorAdapter, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("jsonconv: constructor must be a function, got %T", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() || ft.NumIn() != len(params) {
		return nil, fmt.Errorf("jsonconv: constructor %s takes %d parameters, %d names given", ft, ft.NumIn(), len(params))
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("jsonconv: constructor %s must return T or (T, error)", ft)
	}
	a := &constructorAdapter{fn: fv, typ: ft.Out(0), params: params, args: make([]typedesc.Descriptor, len(params))}
	for i := range params {
		a.args[i] = typedesc.Describe(ft.In(i))
	}
	a.getters = accessors(a.typ, params)
	return a, nil
}

// accessors finds the getter of each param on t or *t, or returns nil if one is missing.
func accessors(t reflect.Type, params []string) []reflect.Method {
	if t.Kind() == reflect.Interface {
		return nil
	}
	mt := t
	if t.Kind() != reflect.Pointer {
		mt = reflect.PointerTo(t)
	}
	out := make([]reflect.Method, len(params))
	for i, name := range params {
		found := false
		for j := 0; j < mt.NumMethod() && !found; j++ {
			m := mt.Method(j)
			if strings.EqualFold(m.Name, name) && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
				out[i], found = m, true
			}
		}
		if !found {
			return nil
		}
	}
	return out
}

func (a *constructorAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return a.getters != nil && v.Type() == a.typ
}

// Serialize writes each accessor's result under its parameter name.
func (a *constructorAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	recv := v
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ctx.Factory().NewPrimitive(nil), nil
		}
	} else {
		recv = reflect.New(a.typ)
		recv.Elem().Set(v)
	}
	obj := objectTarget(ctx)
	for i, name := range a.params {
		pctx := ctx.At(name)
		n, err := pctx.Serialize(a.getters[i].Func.Call([]reflect.Value{recv})[0])
		if err != nil {
			if err = pctx.Recover(err); err != nil {
				return nil, err
			}
			continue
		}
		if err = obj.Put(name, n); err != nil {
			return nil, pctx.Fail(v.Type(), err)
		}
	}
	return obj, nil
}

func (a *constructorAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := n.(*node.Object)
	return ok && d.Type == a.typ
}

func (a *constructorAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	obj := n.(*node.Object)
	in := make([]reflect.Value, len(a.params))
	for i, name := range a.params {
		child, ok := lookupKey(obj, name, ctx.cfg.CaseInsensitiveKeys)
		if !ok {
			in[i] = a.args[i].Zero()
			continue
		}
		pctx := ctx.At(name)
		v, err := pctx.Deserialize(child, a.args[i])
		if err != nil {
			if err = pctx.Recover(err); err != nil {
				return reflect.Value{}, err
			}
			v = a.args[i].Zero()
		}
		in[i] = v
	}
	out := a.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, ctx.Fail(d.Type, out[1].Interface().(error))
	}
	return out[0], nil
}

func lookupKey(obj *node.Object, key string, caseInsensitive bool) (node.Node, bool) {
	if n, ok := obj.Get(key); ok || !caseInsensitive {
		return n, ok
	}
	var found node.Node
	obj.Range(func(k string, n node.Node) bool {
		if strings.EqualFold(k, key) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}
