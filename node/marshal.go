package node

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Marshal renders n as compact JSON text, keeping object key order.
func Marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders n with the given prefix and indent.
func MarshalIndent(n Node, prefix, indent string) ([]byte, error) {
	raw, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String renders n as compact JSON, or an error marker when it cannot be rendered.
func String(n Node) string {
	b, err := Marshal(n)
	if err != nil {
		return "!ERROR(" + err.Error() + ")"
	}
	return string(b)
}

func (p *Primitive) MarshalJSON() ([]byte, error) { return Marshal(p) }
func (a *Array) MarshalJSON() ([]byte, error)     { return Marshal(a) }
func (o *Object) MarshalJSON() ([]byte, error)    { return Marshal(o) }

func write(buf *bytes.Buffer, n Node) error {
	switch c := n.(type) {
	case nil:
		buf.WriteString("null")
	case *Primitive:
		return writePrimitive(buf, c)
	case *Array:
		buf.WriteByte('[')
		for i, it := range c.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		for i, k := range c.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := write(buf, c.vals[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writePrimitive(buf *bytes.Buffer, p *Primitive) error {
	switch v := p.v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case json.Number:
		if v == "" {
			buf.WriteByte('0')
			return nil
		}
		buf.WriteString(string(v))
		return nil
	}
	b, err := json.Marshal(p.v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
