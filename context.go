package jsonconv

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/hengadev/errsx"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

const rootPath = "$"

// Context carries one conversion: its configuration, the registry snapshot taken when the
// operation started, the JSON path of the value being converted and, optionally, the node
// the current value should be merged into.
//
// A Context is cheap to derive; At, Index and WithTarget return copies sharing the
// operation state. It must not be used from more than one goroutine.
type Context struct {
	engine *Engine
	reg    *registry
	cfg    *Config
	target node.Node
	path   string
	state  *opState
}

type opState struct {
	ancestors  []ref
	depth      int
	suppressed errsx.Map
}

// ref identifies a reference container on the recursion path.
type ref struct {
	typ reflect.Type
	ptr uintptr
	len int
}

func refOf(v reflect.Value) (ref, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return ref{}, false
		}
		return ref{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return ref{}, false
		}
		return ref{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	}
	return ref{}, false
}

func (c *Context) Config() Config        { return *c.cfg }
func (c *Context) Factory() node.Factory { return c.cfg.Factory }
func (c *Context) Engine() *Engine       { return c.engine }
func (c *Context) Path() string          { return c.path }
func (c *Context) Target() node.Node     { return c.target }
func (c *Context) Suppressed() errsx.Map { return c.state.suppressed }

func (c *Context) child(path string) *Context {
	nc := *c
	nc.path = path
	nc.target = nil
	return &nc
}

// At derives the context of the member stored under key, with no target.
func (c *Context) At(key string) *Context { return c.child(c.path + "." + key) }

// Index derives the context of the i-th element, with no target.
func (c *Context) Index(i int) *Context { return c.child(c.path + "[" + strconv.Itoa(i) + "]") }

// WithTarget derives a context whose serializers merge into n instead of creating a node.
func (c *Context) WithTarget(n node.Node) *Context {
	nc := *c
	nc.target = n
	return &nc
}

// Seen reports whether v, or the value an interface holds, is a container already being
// serialized further up the current path. Adapters skip such values to break cycles.
func (c *Context) Seen(v reflect.Value) bool {
	v = indirectInterface(v)
	r, ok := refOf(v)
	if !ok {
		return false
	}
	for _, a := range c.state.ancestors {
		if a == r {
			return true
		}
	}
	return false
}

func indirectInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// Serialize converts v with the first matching serializer. The context's target, if any,
// is offered to that serializer.
func (c *Context) Serialize(v reflect.Value) (node.Node, error) {
	v = indirectInterface(v)
	if !v.IsValid() {
		return c.Factory().NewPrimitive(nil), nil
	}
	if err := c.enter(v.Type()); err != nil {
		return nil, err
	}
	defer c.leave()
	if r, ok := refOf(v); ok {
		c.state.ancestors = append(c.state.ancestors, r)
		defer func() { c.state.ancestors = c.state.ancestors[:len(c.state.ancestors)-1] }()
	}
	s := c.reg.serializerFor(v, c)
	if _, ok := s.(defaultAdapter); ok {
		c.cfg.Logger.Debug("jsonconv: no serializer matched", "type", v.Type().String(), "path", c.path)
	}
	return s.Serialize(v, c)
}

// SerializeValue is Serialize for a plain Go value.
func (c *Context) SerializeValue(v any) (node.Node, error) {
	return c.Serialize(reflect.ValueOf(v))
}

// Deserialize converts n into a value of the described type. The returned value has
// exactly d's type, or is the raw value when d is Unknown.
func (c *Context) Deserialize(n node.Node, d typedesc.Descriptor) (reflect.Value, error) {
	if n == nil {
		n = c.Factory().NewPrimitive(nil)
	}
	if err := c.enter(d.Type); err != nil {
		return reflect.Value{}, err
	}
	defer c.leave()
	de := c.reg.deserializerFor(n, d)
	if _, ok := de.(defaultAdapter); ok {
		c.cfg.Logger.Debug("jsonconv: no deserializer matched", "kind", n.Kind().String(), "type", d.String(), "path", c.path)
	}
	v, err := de.Deserialize(n, d, c)
	if err != nil {
		return reflect.Value{}, err
	}
	return c.coerce(v, d)
}

// coerce brings an adapter result to the descriptor's exact type.
func (c *Context) coerce(v reflect.Value, d typedesc.Descriptor) (reflect.Value, error) {
	if d.IsUnknown() {
		if !v.IsValid() {
			return d.Zero(), nil
		}
		return v, nil
	}
	if !v.IsValid() {
		return reflect.Zero(d.Type), nil
	}
	if v.Type() == d.Type {
		return v, nil
	}
	if v.Type().AssignableTo(d.Type) {
		out := reflect.New(d.Type).Elem()
		out.Set(v)
		return out, nil
	}
	if v.Kind() != reflect.Interface && v.Type().ConvertibleTo(d.Type) && v.Kind() == d.Type.Kind() {
		return v.Convert(d.Type), nil
	}
	return reflect.Value{}, c.Failf(d.Type, "adapter produced %s", v.Type())
}

func (c *Context) enter(t reflect.Type) error {
	c.state.depth++
	if c.state.depth > c.cfg.MaxDepth {
		c.state.depth--
		return c.Failf(t, "maximum depth %d exceeded", c.cfg.MaxDepth)
	}
	return nil
}

func (c *Context) leave() { c.state.depth-- }

// Fail wraps err as a ConversionError at the current path.
func (c *Context) Fail(t reflect.Type, err error) error {
	return &ConversionError{Path: c.path, Type: t, Err: err}
}

func (c *Context) Failf(t reflect.Type, format string, args ...any) error {
	return c.Fail(t, fmt.Errorf(format, args...))
}

// Unsupported reports that nothing converts t (from n when deserializing).
func (c *Context) Unsupported(t reflect.Type, n node.Node) error {
	e := &UnsupportedTypeError{Path: c.path, Type: t}
	if n != nil {
		e.Node = n.Kind()
	}
	return e
}

// Recover swallows err when IgnoreConversionErrors is set and err is a conversion
// failure, recording it under the context's path. Other errors are returned unchanged.
func (c *Context) Recover(err error) error {
	if err == nil || !c.cfg.IgnoreConversionErrors || !suppressible(err) {
		return err
	}
	if c.state.suppressed == nil {
		c.state.suppressed = make(errsx.Map)
	}
	c.state.suppressed.Set(c.path, err)
	c.cfg.Logger.Debug("jsonconv: conversion error suppressed", "path", c.path, "error", err)
	return nil
}
