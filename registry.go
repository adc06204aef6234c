package jsonconv

import (
	"fmt"
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// Serializer turns matching Go values into nodes.
type Serializer interface {
	MatchSerialize(v reflect.Value, ctx *Context) bool
	Serialize(v reflect.Value, ctx *Context) (node.Node, error)
}

// Deserializer turns nodes into values of a matching target type.
type Deserializer interface {
	MatchDeserialize(n node.Node, d typedesc.Descriptor) bool
	Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error)
}

// Adapter handles both directions for the types it matches.
type Adapter interface {
	Serializer
	Deserializer
}

// registry is an immutable snapshot; writers build a new one and swap it in.
// User lists are kept newest first so the last registration wins.
type registry struct {
	userSer    []Serializer
	userDe     []Deserializer
	builtinSer []Serializer
	builtinDe  []Deserializer
	defSer     Serializer
	defDe      Deserializer
}

func newRegistry() *registry {
	return &registry{
		builtinSer: builtinSerializers(),
		builtinDe:  builtinDeserializers(),
		defSer:     defaultAdapter{},
		defDe:      defaultAdapter{},
	}
}

// with returns a copy of r with the batch prepended to the user lists.
func (r *registry) with(b *RegistryBatch) *registry {
	nr := *r
	nr.userSer = make([]Serializer, 0, len(r.userSer)+len(b.ser))
	for i := len(b.ser) - 1; i >= 0; i-- {
		nr.userSer = append(nr.userSer, b.ser[i])
	}
	nr.userSer = append(nr.userSer, r.userSer...)
	nr.userDe = make([]Deserializer, 0, len(r.userDe)+len(b.de))
	for i := len(b.de) - 1; i >= 0; i-- {
		nr.userDe = append(nr.userDe, b.de[i])
	}
	nr.userDe = append(nr.userDe, r.userDe...)
	return &nr
}

// serializerFor never returns nil: the default adapter closes the search.
func (r *registry) serializerFor(v reflect.Value, ctx *Context) Serializer {
	for _, s := range r.userSer {
		if s.MatchSerialize(v, ctx) {
			return s
		}
	}
	for _, s := range r.builtinSer {
		if s.MatchSerialize(v, ctx) {
			return s
		}
	}
	return r.defSer
}

func (r *registry) deserializerFor(n node.Node, d typedesc.Descriptor) Deserializer {
	for _, de := range r.userDe {
		if de.MatchDeserialize(n, d) {
			return de
		}
	}
	for _, de := range r.builtinDe {
		if de.MatchDeserialize(n, d) {
			return de
		}
	}
	return r.defDe
}

// RegistryBatch collects registrations applied with a single registry swap.
type RegistryBatch struct {
	ser []Serializer
	de  []Deserializer
	err error
}

// Serializer adds a user serializer.
func (b *RegistryBatch) Serializer(s Serializer) *RegistryBatch {
	if s == nil {
		b.fail(fmt.Errorf("jsonconv: nil serializer"))
		return b
	}
	b.ser = append(b.ser, s)
	return b
}

// Deserializer adds a user deserializer.
func (b *RegistryBatch) Deserializer(d Deserializer) *RegistryBatch {
	if d == nil {
		b.fail(fmt.Errorf("jsonconv: nil deserializer"))
		return b
	}
	b.de = append(b.de, d)
	return b
}

// Adapter adds a under every capability it implements.
func (b *RegistryBatch) Adapter(a any) *RegistryBatch {
	s, isSer := a.(Serializer)
	d, isDe := a.(Deserializer)
	if !isSer && !isDe {
		b.fail(fmt.Errorf("jsonconv: %T implements neither Serializer nor Deserializer", a))
		return b
	}
	if isSer {
		b.ser = append(b.ser, s)
	}
	if isDe {
		b.de = append(b.de, d)
	}
	return b
}

// Enum registers an enumeration type by its declared values. All values must share one type.
func (b *RegistryBatch) Enum(values ...fmt.Stringer) *RegistryBatch {
	a, err := newEnumAdapter(values)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Adapter(a)
}

// Constructor registers fn as the way to build its first result type from an Object.
// paramNames name the Object keys passed to each parameter in order. The type also
// serializes to that Object when it has an accessor method named after every parameter.
func (b *RegistryBatch) Constructor(fn any, paramNames ...string) *RegistryBatch {
	a, err := newConstructorAdapter(fn, paramNames)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Adapter(a)
}

// ErrorType lets deserialization rebuild errors whose type name matches sample's.
func (b *RegistryBatch) ErrorType(sample error, ctor func(msg string) error) *RegistryBatch {
	if sample == nil || ctor == nil {
		b.fail(fmt.Errorf("jsonconv: error type registration needs a sample and a constructor"))
		return b
	}
	return b.Deserializer(errorTypeAdapter{name: typeName(reflect.TypeOf(sample)), ctor: ctor})
}

// AllowTypes enables resolving the given types from their names.
func (b *RegistryBatch) AllowTypes(types ...reflect.Type) *RegistryBatch {
	byName := make(map[string]reflect.Type, len(types))
	for _, t := range types {
		if t == nil {
			b.fail(fmt.Errorf("jsonconv: nil type in type resolution"))
			return b
		}
		byName[typeName(t)] = t
	}
	return b.Deserializer(typeResolver{byName: byName})
}

func (b *RegistryBatch) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Batch applies every registration made by fn with one swap. Nothing is applied when
// any registration in the batch is invalid.
func (e *Engine) Batch(fn func(r *RegistryBatch)) error {
	b := &RegistryBatch{}
	fn(b)
	if b.err != nil {
		return b.err
	}
	if len(b.ser) == 0 && len(b.de) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	nr := e.snapshot().with(b)
	e.reg.Store(nr)
	e.config.Logger.Debug("jsonconv: registry updated",
		"serializers", len(nr.userSer), "deserializers", len(nr.userDe))
	return nil
}

// Register adds a, which must implement Serializer, Deserializer or both.
func (e *Engine) Register(a any) error {
	return e.Batch(func(r *RegistryBatch) { r.Adapter(a) })
}

func (e *Engine) RegisterSerializer(s Serializer) error {
	return e.Batch(func(r *RegistryBatch) { r.Serializer(s) })
}

func (e *Engine) RegisterDeserializer(d Deserializer) error {
	return e.Batch(func(r *RegistryBatch) { r.Deserializer(d) })
}

func (e *Engine) RegisterEnum(values ...fmt.Stringer) error {
	return e.Batch(func(r *RegistryBatch) { r.Enum(values...) })
}

func (e *Engine) RegisterConstructor(fn any, paramNames ...string) error {
	return e.Batch(func(r *RegistryBatch) { r.Constructor(fn, paramNames...) })
}

func (e *Engine) RegisterErrorType(sample error, ctor func(msg string) error) error {
	return e.Batch(func(r *RegistryBatch) { r.ErrorType(sample, ctor) })
}

func (e *Engine) AllowTypes(types ...reflect.Type) error {
	return e.Batch(func(r *RegistryBatch) { r.AllowTypes(types...) })
}

// RegisterType registers conversion functions for exactly T. Either function may be nil
// to register only the other direction.
func RegisterType[T any](e *Engine, ser func(v T, ctx *Context) (node.Node, error), de func(n node.Node, ctx *Context) (T, error)) error {
	if ser == nil && de == nil {
		return fmt.Errorf("jsonconv: RegisterType[%s] needs at least one function", reflect.TypeFor[T]())
	}
	a := &funcAdapter[T]{typ: reflect.TypeFor[T](), ser: ser, de: de}
	return e.Batch(func(r *RegistryBatch) {
		if ser != nil {
			r.Serializer(a)
		}
		if de != nil {
			r.Deserializer(a)
		}
	})
}

type funcAdapter[T any] struct {
	typ reflect.Type
	ser func(T, *Context) (node.Node, error)
	de  func(node.Node, *Context) (T, error)
}

func (a *funcAdapter[T]) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Type() == a.typ
}

func (a *funcAdapter[T]) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	return a.ser(v.Interface().(T), ctx)
}

func (a *funcAdapter[T]) MatchDeserialize(_ node.Node, d typedesc.Descriptor) bool {
	return d.Type == a.typ
}

func (a *funcAdapter[T]) Deserialize(n node.Node, _ typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	v, err := a.de(n, ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(a.typ).Elem()
	out.Set(reflect.ValueOf(&v).Elem())
	return out, nil
}
