package jsonconv

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"reflect"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// rawDocumentAdapter embeds JSON text held by json.RawMessage, sqlboiler types.JSON,
// null.JSON and io.Reader values as a parsed tree, and prints trees back into the
// document types. Plain []byte is embedded when it looks like a document and written
// as a byte array otherwise; a []byte target also accepts base64 text.
type rawDocumentAdapter struct{}

func isDocumentType(t reflect.Type) bool {
	return t == rawMessageType || t == boilerJSONType || t == nullJSONType
}

// isBytes excludes byte slices with a text form of their own, such as net.IP.
func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 &&
		!t.Implements(textMarshalerType) && !reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (rawDocumentAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	t := v.Type()
	return isDocumentType(t) || isBytes(t) || t.Implements(readerType)
}

func (rawDocumentAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	t := v.Type()
	switch {
	case t == nullJSONType:
		nj := v.Interface().(null.JSON)
		if !nj.Valid {
			return ctx.Factory().NewPrimitive(nil), nil
		}
		return parseDocument(nj.JSON, t, ctx)
	case isDocumentType(t):
		return parseDocument(v.Bytes(), t, ctx)
	case isBytes(t):
		if v.IsNil() {
			return ctx.Factory().NewPrimitive(nil), nil
		}
		b := v.Bytes()
		if looksLikeDocument(b) {
			if n, err := node.ParseBytes(b); err == nil {
				return n, nil
			}
		}
		arr := arrayTarget(ctx)
		for _, x := range b {
			if err := arr.Add(ctx.Factory().NewPrimitive(uint64(x))); err != nil {
				return nil, ctx.Fail(t, err)
			}
		}
		return arr, nil
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	n, err := node.Parse(v.Interface().(io.Reader))
	if err != nil {
		return nil, ctx.Fail(t, err)
	}
	return n, nil
}

func parseDocument(b []byte, t reflect.Type, ctx *Context) (node.Node, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	n, err := node.ParseBytes(b)
	if err != nil {
		return nil, ctx.Fail(t, err)
	}
	return n, nil
}

func looksLikeDocument(b []byte) bool {
	b = bytes.TrimLeft(b, " \t\r\n")
	return len(b) > 0 && (b[0] == '{' || b[0] == '[')
}

func (rawDocumentAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.IsUnknown() {
		return false
	}
	if isDocumentType(d.Type) {
		return true
	}
	_, isString := stringOf(n)
	return isString && isBytes(d.Type)
}

func (rawDocumentAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	if !isDocumentType(d.Type) {
		s, _ := stringOf(n)
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		return reflect.ValueOf(b).Convert(d.Type), nil
	}
	b, err := node.Marshal(n)
	if err != nil {
		return reflect.Value{}, ctx.Fail(d.Type, err)
	}
	switch d.Type {
	case nullJSONType:
		return reflect.ValueOf(null.JSONFrom(b)), nil
	case boilerJSONType:
		return reflect.ValueOf(boilertypes.JSON(b)), nil
	}
	return reflect.ValueOf(json.RawMessage(b)), nil
}
