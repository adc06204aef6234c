// Package node defines the JSON value tree consumed and produced by jsonconv.
//
// A tree is made of three node kinds: Primitive (null, bool, string, number or an
// already-typed scalar), Array (ordered sequence) and Object (insertion-ordered
// string keys). Containers refuse to adopt a node that already contains them, so a
// tree never becomes a graph.
package node

import (
	"errors"
	"fmt"
)

// Kind identifies the shape of a Node.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// ErrCycle is returned when a container would become its own descendant.
var ErrCycle = errors.New("node: attaching node would create a cycle")

// Node is a JSON value. The set of implementations is closed: *Primitive, *Array and *Object.
type Node interface {
	Kind() Kind
	// Clone returns a deep copy that shares no containers with the receiver.
	Clone() Node
	sealed()
}

// Factory creates empty nodes. Adapters allocate through the Context factory so callers
// can substitute pooled or instrumented nodes.
type Factory interface {
	NewPrimitive(v any) *Primitive
	NewArray() *Array
	NewObject() *Object
}

type defaultFactory struct{}

func (defaultFactory) NewPrimitive(v any) *Primitive { return NewPrimitive(v) }
func (defaultFactory) NewArray() *Array              { return NewArray() }
func (defaultFactory) NewObject() *Object            { return NewObject() }

// DefaultFactory allocates plain heap nodes.
var DefaultFactory Factory = defaultFactory{}

// Primitive holds a scalar. A nil value is JSON null.
type Primitive struct {
	v any
}

// NewPrimitive wraps v. Numbers produced by the parser are json.Number.
func NewPrimitive(v any) *Primitive { return &Primitive{v: v} }

// Null returns a fresh JSON null.
func Null() *Primitive { return &Primitive{} }

func (p *Primitive) Kind() Kind  { return KindPrimitive }
func (p *Primitive) Clone() Node { return &Primitive{v: p.v} }
func (p *Primitive) sealed()     {}

// Value returns the wrapped scalar.
func (p *Primitive) Value() any { return p.v }

// IsNull reports whether the primitive is JSON null.
func (p *Primitive) IsNull() bool { return p == nil || p.v == nil }

func (p *Primitive) String() string {
	if p.IsNull() {
		return "null"
	}
	return fmt.Sprint(p.v)
}

// Array is an ordered sequence of nodes.
type Array struct {
	items []Node
}

// NewArray returns an empty array.
func NewArray() *Array { return &Array{} }

func (a *Array) Kind() Kind { return KindArray }
func (a *Array) sealed()    {}

func (a *Array) Clone() Node {
	c := &Array{items: make([]Node, len(a.items))}
	for i, it := range a.items {
		c.items[i] = it.Clone()
	}
	return c
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i.
func (a *Array) At(i int) Node { return a.items[i] }

// Items returns the elements. The slice must not be modified.
func (a *Array) Items() []Node { return a.items }

// Add appends n. A nil n is stored as JSON null.
func (a *Array) Add(n Node) error {
	if n == nil {
		n = Null()
	}
	if contains(n, a) {
		return ErrCycle
	}
	a.items = append(a.items, n)
	return nil
}

// Object is a string-keyed mapping that remembers insertion order.
type Object struct {
	keys []string
	vals map[string]Node
}

// NewObject returns an empty object.
func NewObject() *Object { return &Object{vals: make(map[string]Node)} }

func (o *Object) Kind() Kind { return KindObject }
func (o *Object) sealed()    {}

func (o *Object) Clone() Node {
	c := &Object{keys: append([]string(nil), o.keys...), vals: make(map[string]Node, len(o.vals))}
	for k, v := range o.vals {
		c.vals[k] = v.Clone()
	}
	return c
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string { return o.keys }

// Get returns the value stored under key.
func (o *Object) Get(key string) (Node, bool) {
	n, ok := o.vals[key]
	return n, ok
}

// Put stores n under key. Replacing an existing key keeps its position.
func (o *Object) Put(key string, n Node) error {
	if n == nil {
		n = Null()
	}
	if contains(n, o) {
		return ErrCycle
	}
	if o.vals == nil {
		o.vals = make(map[string]Node)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = n
	return nil
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for each entry in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, n Node) bool) {
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// contains reports whether target is n or is reachable from n.
func contains(n Node, target Node) bool {
	if n == target {
		return true
	}
	switch c := n.(type) {
	case *Array:
		for _, it := range c.items {
			if contains(it, target) {
				return true
			}
		}
	case *Object:
		for _, it := range c.vals {
			if contains(it, target) {
				return true
			}
		}
	}
	return false
}

// Unwrap converts a tree into plain Go values: nil, bool, string, json.Number (or whatever
// scalar a Primitive carries), []any and map[string]any.
func Unwrap(n Node) any {
	switch c := n.(type) {
	case nil:
		return nil
	case *Primitive:
		return c.v
	case *Array:
		out := make([]any, len(c.items))
		for i, it := range c.items {
			out[i] = Unwrap(it)
		}
		return out
	case *Object:
		out := make(map[string]any, len(c.keys))
		for _, k := range c.keys {
			out[k] = Unwrap(c.vals[k])
		}
		return out
	}
	return nil
}
