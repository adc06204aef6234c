// Package typedesc resolves Go types into descriptors that carry the element, key and
// value types needed to convert nested containers.
package typedesc

import (
	"reflect"
	"strings"
)

// Descriptor describes a conversion target. Args holds the element type of slices,
// arrays, channels, pointers and iterators, or the key and value types of maps and
// parameterized entries.
type Descriptor struct {
	Type reflect.Type
	Args []Descriptor
}

// Unknown is the descriptor of "no target type" and of the empty interface. Deserializers
// receiving it pass the raw value through instead of converting further.
var Unknown = Descriptor{}

// Parameterized is implemented by generic value types that want their type arguments
// exposed, such as key/value entries. TypeArgs is called on the zero value.
type Parameterized interface {
	TypeArgs() []reflect.Type
}

var parameterizedType = reflect.TypeFor[Parameterized]()

// IsUnknown reports whether d is the Unknown sentinel.
func (d Descriptor) IsUnknown() bool { return d.Type == nil }

// Kind returns the reflect.Kind of the described type, reflect.Interface for Unknown.
func (d Descriptor) Kind() reflect.Kind {
	if d.Type == nil {
		return reflect.Interface
	}
	return d.Type.Kind()
}

// Arg returns the i-th type argument, or Unknown when there is none.
func (d Descriptor) Arg(i int) Descriptor {
	if i < 0 || i >= len(d.Args) {
		return Unknown
	}
	return d.Args[i]
}

// Zero returns the zero value of the described type.
func (d Descriptor) Zero() reflect.Value {
	if d.Type == nil {
		return reflect.Zero(reflect.TypeFor[any]())
	}
	return reflect.Zero(d.Type)
}

// New returns an addressable zero value of the described type.
func (d Descriptor) New() reflect.Value {
	if d.Type == nil {
		return reflect.New(reflect.TypeFor[any]()).Elem()
	}
	return reflect.New(d.Type).Elem()
}

func (d Descriptor) String() string {
	if d.Type == nil {
		return "unknown"
	}
	if len(d.Args) == 0 {
		return d.Type.String()
	}
	parts := make([]string, len(d.Args))
	for i, a := range d.Args {
		parts[i] = a.String()
	}
	return d.Type.String() + "<" + strings.Join(parts, ",") + ">"
}

// Describe resolves t. A nil type or an interface without methods yields Unknown.
func Describe(t reflect.Type) Descriptor {
	if t == nil || (t.Kind() == reflect.Interface && t.NumMethod() == 0) {
		return Unknown
	}
	d := Descriptor{Type: t}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Chan, reflect.Pointer:
		d.Args = []Descriptor{Describe(t.Elem())}
	case reflect.Map:
		d.Args = []Descriptor{Describe(t.Key()), Describe(t.Elem())}
	case reflect.Func:
		d.Args = seqArgs(t)
	case reflect.Struct:
		if t.Implements(parameterizedType) {
			args := reflect.Zero(t).Interface().(Parameterized).TypeArgs()
			d.Args = make([]Descriptor, len(args))
			for i, a := range args {
				d.Args[i] = Describe(a)
			}
		}
	}
	return d
}

// Of describes T.
func Of[T any]() Descriptor { return Describe(reflect.TypeFor[T]()) }

// IsSeq reports whether t has the shape of iter.Seq or iter.Seq2.
func IsSeq(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Func && len(seqArgs(t)) > 0
}

// seqArgs returns the yielded types of an iter.Seq / iter.Seq2 shaped func type.
func seqArgs(t reflect.Type) []Descriptor {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return nil
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil
	}
	if yield.NumIn() < 1 || yield.NumIn() > 2 {
		return nil
	}
	args := make([]Descriptor, yield.NumIn())
	for i := range yield.NumIn() {
		args[i] = Describe(yield.In(i))
	}
	return args
}
