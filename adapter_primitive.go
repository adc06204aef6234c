package jsonconv

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/spf13/cast"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// primitiveAdapter handles bools, integers, floats, strings and json.Number.
type primitiveAdapter struct{}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (primitiveAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return scalarKind(v.Kind()) }

func (primitiveAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	f := ctx.Factory()
	switch v.Kind() {
	case reflect.Bool:
		return f.NewPrimitive(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.NewPrimitive(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return f.NewPrimitive(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		x := v.Float()
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ctx.Failf(v.Type(), "%v has no JSON representation", x)
		}
		return f.NewPrimitive(x), nil
	}
	if v.Type() == jsonNumberType {
		return f.NewPrimitive(json.Number(v.String())), nil
	}
	return f.NewPrimitive(v.String()), nil
}

func (primitiveAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := primitiveOf(n)
	return ok && !d.IsUnknown() && scalarKind(d.Kind())
}

func (primitiveAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	p, _ := primitiveOf(n)
	raw := p.Value()
	out := reflect.New(d.Type).Elem()
	switch d.Kind() {
	case reflect.String:
		s, err := toString(raw)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		out.SetString(s)
	case reflect.Bool:
		b, err := toBool(raw)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(raw)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, ctx.Failf(d.Type, "%d overflows %s", i, d.Type)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := toUint64(raw)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, ctx.Failf(d.Type, "%d overflows %s", u, d.Type)
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		x, err := toFloat64(raw)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		if out.OverflowFloat(x) {
			return reflect.Value{}, ctx.Failf(d.Type, "%v overflows %s", x, d.Type)
		}
		out.SetFloat(x)
	}
	return out, nil
}

func toString(raw any) (string, error) {
	if n, ok := raw.(json.Number); ok {
		return string(n), nil
	}
	return cast.ToStringE(raw)
}

func toFloat64(raw any) (float64, error) {
	if n, ok := raw.(json.Number); ok {
		return n.Float64()
	}
	return cast.ToFloat64E(raw)
}

func toBool(raw any) (bool, error) {
	if n, ok := raw.(json.Number); ok {
		raw = string(n)
	}
	return cast.ToBoolE(raw)
}

// toInt64 refuses fractional values instead of truncating them.
func toInt64(raw any) (int64, error) {
	switch x := raw.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		raw = f
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
	}
	switch x := raw.(type) {
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
	case float32:
		if float64(x) != math.Trunc(float64(x)) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
	}
	return cast.ToInt64E(raw)
}

func toUint64(raw any) (uint64, error) {
	switch x := raw.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return u, nil
		}
	case uint64:
		return x, nil
	}
	i, err := toInt64(raw)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%d is negative", i)
	}
	return uint64(i), nil
}
