// Package jsonconv converts Go values to and from a generic JSON tree (package node).
//
// An Engine holds a priority-ordered registry of adapters. Serializing a value asks each
// adapter in turn whether it handles the value and uses the first that does;
// deserializing asks whether an adapter handles a (node, target type) pair. User adapters
// are tried before the built-in ones, most recently registered first, so registering an
// adapter for a type overrides the built-in behavior for it.
//
// Basic Usage
//
//	e := jsonconv.New()
//	n, err := e.Serialize(order)
//	back, err := jsonconv.DeserializeTo[Order](e, n)
//
// # Built-in Adapters
//
// In order: raw JSON documents (json.RawMessage, sqlboiler types.JSON, null.JSON,
// io.Reader, []byte), time.Time and time.Duration, *time.Location, reflect.Type, errors,
// *roaring.Bitmap, iter.Seq and All() sequences, pointers and null wrappers
// (aarondl/null, database/sql), encoding.TextMarshaler types, primitives, Entry, Tuple,
// maps, slices and arrays, structs. Anything else fails with ErrUnsupportedType, except
// node.Node values which pass through as clones.
//
// # Structs
//
// Exported fields are written under their json tag name or Go name. Embedded structs are
// flattened. The jsonconv tag skips ("-"), inlines ("inline") or aliases ("alias=a|b") a
// field. Types whose fields cannot be set one by one can register a constructor:
//
//	e.RegisterConstructor(NewMoney, "amount", "currency")
//
// # Shape
//
// A Context may carry a target node. Serializers producing objects or arrays merge into
// a target of the same shape instead of creating a node; a time.Time offered an Object
// target writes its calendar fields into it. SerializeInto exposes this at the API level.
//
// # Errors
//
// Failures are *UnsupportedTypeError, *ConversionError or *SecurityOptOutError, matching
// ErrUnsupportedType, ErrConversionFailure and ErrSecurityOptOut with errors.Is. With
// WithIgnoreConversionErrors(true) a conversion failure of a field, element or map entry
// leaves it at its zero value; DeserializeReport returns what was skipped.
//
// Resolving error types and reflect.Type values from text is refused unless enabled with
// RegisterErrorType or AllowTypes.
//
// # Thread Safety
//
// The Engine is safe for concurrent use. Multiple goroutines can convert and register
// adapters concurrently. Internals use a copy-on-write registry and cached field metadata.
package jsonconv
