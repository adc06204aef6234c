package node

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// Parse reads exactly one JSON document from r. Numbers are kept as json.Number so no
// precision is lost before a deserializer picks the target type.
func Parse(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("node: empty document")
	}
	if err != nil {
		return nil, fmt.Errorf("node: parse failed: %w", err)
	}
	n, err := parseToken(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("node: parse failed: %w", err)
		}
		return nil, fmt.Errorf("node: unexpected data after top-level value")
	}
	return n, nil
}

// ParseBytes parses a document held in memory.
func ParseBytes(data []byte) (Node, error) { return Parse(bytes.NewReader(data)) }

// ParseString parses a document held in a string.
func ParseString(s string) (Node, error) { return Parse(strings.NewReader(s)) }

func parseToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("node: unexpected delimiter %q", rune(t))
		}
	case json.Number:
		// the tokenizer may alias its read buffer
		return NewPrimitive(json.Number(strings.Clone(string(t)))), nil
	case string, bool, nil, float64:
		return NewPrimitive(t), nil
	default:
		return nil, fmt.Errorf("node: unexpected token %T", tok)
	}
}

func parseObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("node: reading object key: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("node: object key must be a string, got %T", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("node: reading value of %q: %w", key, err)
		}
		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			return nil, fmt.Errorf("node: missing value for key %q", key)
		}
		val, err := parseToken(dec, tok)
		if err != nil {
			return nil, err
		}
		if err := obj.Put(key, val); err != nil {
			return nil, err
		}
	}
}

func parseArray(dec *json.Decoder) (*Array, error) {
	arr := NewArray()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("node: reading array element: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		val, err := parseToken(dec, tok)
		if err != nil {
			return nil, err
		}
		if err := arr.Add(val); err != nil {
			return nil, err
		}
	}
}
