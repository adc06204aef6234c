package jsonconv

import (
	"fmt"
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
)

// Generic helpers as top-level functions (methods cannot have type parameters yet)

// DeserializeTo converts n into a T.
func DeserializeTo[T any](e *Engine, n node.Node, opts ...Option) (T, error) {
	var d T
	err := e.DeserializeInto(n, &d, opts...)
	return d, err
}

// Convert maps src onto a T by serializing it and deserializing the tree. Source and
// destination only need compatible shapes, not the same type.
func Convert[T any](e *Engine, src any, opts ...Option) (T, error) {
	var d T
	n, err := e.Serialize(src, opts...)
	if err != nil {
		return d, fmt.Errorf("jsonconv: convert %T to %s: %w", src, reflect.TypeFor[T](), err)
	}
	if err = e.DeserializeInto(n, &d, opts...); err != nil {
		return d, fmt.Errorf("jsonconv: convert %T to %s: %w", src, reflect.TypeFor[T](), err)
	}
	return d, nil
}

// Copy is Convert writing into an existing destination.
func Copy[T any](e *Engine, dst *T, src any, opts ...Option) error {
	v, err := Convert[T](e, src, opts...)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// UnmarshalTo parses data into a T.
func UnmarshalTo[T any](e *Engine, data []byte, opts ...Option) (T, error) {
	var d T
	err := e.Unmarshal(data, &d, opts...)
	return d, err
}
