package jsonconv

import (
	"encoding"
	"encoding/json"
	"io"
	"reflect"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"

	"github.com/Station-Manager/jsonconv/node"
)

var (
	nodeType            = reflect.TypeFor[node.Node]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	errorType           = reflect.TypeFor[error]()
	readerType          = reflect.TypeFor[io.Reader]()
	reflectTypeType     = reflect.TypeFor[reflect.Type]()
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	locationType        = reflect.TypeFor[*time.Location]()
	jsonNumberType      = reflect.TypeFor[json.Number]()
	rawMessageType      = reflect.TypeFor[json.RawMessage]()
	boilerJSONType      = reflect.TypeFor[boilertypes.JSON]()
	nullJSONType        = reflect.TypeFor[null.JSON]()
	bitmapType          = reflect.TypeFor[*roaring.Bitmap]()
)

// Built-in adapters in the order they are tried. More specific types come before the
// generic shapes they also satisfy: time.Time is a TextMarshaler and a struct, uuid.UUID
// is an array, null.JSON is a nullable wrapper.
func builtinSerializers() []Serializer {
	return []Serializer{
		rawDocumentAdapter{},
		temporalAdapter{},
		zoneAdapter{},
		typeAdapter{},
		errorAdapter{},
		bitmapAdapter{},
		iterableAdapter{},
		nullableAdapter{},
		textAdapter{},
		primitiveAdapter{},
		entryAdapter{},
		tupleAdapter{},
		mapAdapter{},
		collectionAdapter{},
		beanAdapter{},
	}
}

func builtinDeserializers() []Deserializer {
	return []Deserializer{
		anyAdapter{},
		nullAdapter{},
		rawDocumentAdapter{},
		temporalAdapter{},
		zoneAdapter{},
		typeAdapter{},
		errorAdapter{},
		bitmapAdapter{},
		nullableAdapter{},
		textAdapter{},
		primitiveAdapter{},
		entryAdapter{},
		tupleAdapter{},
		mapAdapter{},
		collectionAdapter{},
		beanAdapter{},
	}
}

func primitiveOf(n node.Node) (*node.Primitive, bool) {
	p, ok := n.(*node.Primitive)
	return p, ok
}

func isNull(n node.Node) bool {
	p, ok := primitiveOf(n)
	return ok && p.IsNull()
}

func stringOf(n node.Node) (string, bool) {
	p, ok := primitiveOf(n)
	if !ok {
		return "", false
	}
	s, ok := p.Value().(string)
	return s, ok
}

func implements(t, iface reflect.Type) bool {
	return t != nil && t.Implements(iface)
}

func isNodeType(t reflect.Type) bool {
	return t == nodeType || implements(t, nodeType)
}

// objectTarget returns the context's Object target, or a new Object.
func objectTarget(ctx *Context) *node.Object {
	if o, ok := ctx.Target().(*node.Object); ok {
		return o
	}
	return ctx.Factory().NewObject()
}

// arrayTarget returns the context's Array target, or a new Array.
func arrayTarget(ctx *Context) *node.Array {
	if a, ok := ctx.Target().(*node.Array); ok {
		return a
	}
	return ctx.Factory().NewArray()
}
