package jsonconv

import (
	"fmt"
	"reflect"
)

// Builder provides a fluent API to construct an Engine with options and adapters pre-registered.
type Builder struct {
	opts  []Option
	steps []func(r *RegistryBatch)
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder { return &Builder{} }

// WithOptions appends engine options to the builder.
func (b *Builder) WithOptions(opts ...Option) *Builder { b.opts = append(b.opts, opts...); return b }

// WithAdapter registers a value implementing Serializer, Deserializer or both.
func (b *Builder) WithAdapter(a any) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.Adapter(a) })
	return b
}

// WithSerializer registers a user serializer.
func (b *Builder) WithSerializer(s Serializer) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.Serializer(s) })
	return b
}

// WithDeserializer registers a user deserializer.
func (b *Builder) WithDeserializer(d Deserializer) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.Deserializer(d) })
	return b
}

// WithEnum registers an enumeration type by its declared values.
func (b *Builder) WithEnum(values ...fmt.Stringer) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.Enum(values...) })
	return b
}

// WithConstructor registers fn as the way to build its result type from an object.
func (b *Builder) WithConstructor(fn any, paramNames ...string) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.Constructor(fn, paramNames...) })
	return b
}

// WithErrorType lets errors of sample's type be rebuilt by ctor.
func (b *Builder) WithErrorType(sample error, ctor func(msg string) error) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.ErrorType(sample, ctor) })
	return b
}

// WithTypeResolution enables resolving the given types from their names.
func (b *Builder) WithTypeResolution(types ...reflect.Type) *Builder {
	b.steps = append(b.steps, func(r *RegistryBatch) { r.AllowTypes(types...) })
	return b
}

// Build constructs an Engine using a single registry swap for every registration, in the
// order they were added.
func (b *Builder) Build() (*Engine, error) {
	e := NewWithOptions(b.opts...)
	err := e.Batch(func(r *RegistryBatch) {
		for _, step := range b.steps {
			step(r)
		}
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}
