package jsonconv

import (
	"fmt"
	"reflect"
	"time"

	"github.com/Station-Manager/jsonconv/converters"
	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// Keys of a time.Time flattened into an Object target. offset is seconds east of UTC.
var temporalFields = []string{"year", "month", "day", "hour", "minute", "second", "nanosecond", "zone", "offset"}

// Instants at which a zone's offsets are compared with those of the zone its name loads.
var zoneSamples = []time.Time{
	time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2000, time.July, 1, 0, 0, 0, 0, time.UTC),
}

// temporalAdapter handles time.Time and time.Duration.
//
// A standalone time.Time is rendered per Config.DateFormat: epoch milliseconds by default,
// epoch seconds for "seconds", text otherwise. Offered an Object target, it writes its
// calendar fields into that Object instead.
type temporalAdapter struct{}

func (temporalAdapter) MatchSerialize(v reflect.Value, _ *Context) bool {
	return v.Type() == timeType || v.Type() == durationType
}

func (temporalAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	f := ctx.Factory()
	if v.Type() == durationType {
		return f.NewPrimitive(time.Duration(v.Int()).String()), nil
	}
	t := v.Interface().(time.Time)
	if obj, ok := ctx.Target().(*node.Object); ok {
		_, offset := t.Zone()
		vals := []any{int64(t.Year()), int64(t.Month()), int64(t.Day()), int64(t.Hour()),
			int64(t.Minute()), int64(t.Second()), int64(t.Nanosecond()), t.Location().String(), int64(offset)}
		for i, k := range temporalFields {
			if err := obj.Put(k, f.NewPrimitive(vals[i])); err != nil {
				return nil, ctx.Fail(v.Type(), err)
			}
		}
		return obj, nil
	}
	format := ctx.cfg.DateFormat
	if converters.IsEpochFormat(format) {
		return f.NewPrimitive(converters.TimeToEpoch(t, format)), nil
	}
	return f.NewPrimitive(converters.FormatTime(t, format)), nil
}

func (temporalAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.Type != timeType && d.Type != durationType {
		return false
	}
	switch n.(type) {
	case *node.Primitive:
		return true
	case *node.Object:
		return d.Type == timeType
	}
	return false
}

func (temporalAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	if d.Type == durationType {
		p, _ := primitiveOf(n)
		dur, err := converters.ParseDuration(p.Value())
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		return reflect.ValueOf(dur), nil
	}
	if obj, ok := n.(*node.Object); ok {
		t, err := timeFromFields(obj, ctx.cfg.Location)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		return reflect.ValueOf(t), nil
	}
	p, _ := primitiveOf(n)
	raw := p.Value()
	if t, ok := raw.(time.Time); ok {
		return reflect.ValueOf(t), nil
	}
	format := ctx.cfg.DateFormat
	if s, ok := raw.(string); ok {
		var (
			t   time.Time
			err error
		)
		if converters.IsEpochFormat(format) {
			t, err = converters.ParseTime(s, time.RFC3339Nano, ctx.cfg.Location)
		} else {
			t, err = converters.ParseTime(s, format, ctx.cfg.Location)
		}
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		return reflect.ValueOf(t), nil
	}
	if format != converters.FormatSeconds {
		format = converters.FormatMillis
	}
	t, err := converters.EpochToTime(raw, format)
	if err != nil {
		return reflect.Value{}, ctx.Fail(d.Type, err)
	}
	return reflect.ValueOf(t), nil
}

// timeFromFields is the inverse of the Object form. Missing fields are zero, except day
// and month which default to 1; a missing zone means loc. With an offset, a zone name that
// does not load or disagrees with it gives a fixed zone.
func timeFromFields(obj *node.Object, loc *time.Location) (time.Time, error) {
	var parts [7]int
	for i, k := range temporalFields[:7] {
		child, ok := obj.Get(k)
		if !ok || isNull(child) {
			if k == "month" || k == "day" {
				parts[i] = 1
			}
			continue
		}
		p, ok := primitiveOf(child)
		if !ok {
			return time.Time{}, fmt.Errorf("field %q is a %s", k, child.Kind())
		}
		x, err := toInt64(p.Value())
		if err != nil {
			return time.Time{}, fmt.Errorf("field %q: %w", k, err)
		}
		parts[i] = int(x)
	}
	name, hasZone, err := zoneField(obj)
	if err != nil {
		return time.Time{}, err
	}
	offset, hasOffset, err := offsetField(obj)
	if err != nil {
		return time.Time{}, err
	}
	date := func(l *time.Location) time.Time {
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], l)
	}
	switch {
	case hasOffset:
		loc = zoneWithOffset(name, offset, date(time.FixedZone(name, offset)))
	case hasZone:
		if loc, err = converters.LoadZone(name); err != nil {
			return time.Time{}, err
		}
	}
	return date(loc), nil
}

func zoneField(obj *node.Object) (string, bool, error) {
	child, ok := obj.Get("zone")
	if !ok || isNull(child) {
		return "", false, nil
	}
	p, ok := primitiveOf(child)
	if !ok {
		return "", false, fmt.Errorf("field %q is a %s", "zone", child.Kind())
	}
	name, err := toString(p.Value())
	if err != nil {
		return "", false, fmt.Errorf("field %q: %w", "zone", err)
	}
	return name, true, nil
}

func offsetField(obj *node.Object) (int, bool, error) {
	child, ok := obj.Get("offset")
	if !ok || isNull(child) {
		return 0, false, nil
	}
	p, ok := primitiveOf(child)
	if !ok {
		return 0, false, fmt.Errorf("field %q is a %s", "offset", child.Kind())
	}
	x, err := toInt64(p.Value())
	if err != nil {
		return 0, false, fmt.Errorf("field %q: %w", "offset", err)
	}
	return int(x), true, nil
}

// zoneWithOffset loads name, unless it does not load or is not offset seconds east of
// UTC at every instant in at, in which case the result is time.FixedZone(name, offset).
func zoneWithOffset(name string, offset int, at ...time.Time) *time.Location {
	loc, err := converters.LoadZone(name)
	if err != nil {
		return time.FixedZone(name, offset)
	}
	for _, t := range at {
		if _, off := t.In(loc).Zone(); off != offset {
			return time.FixedZone(name, offset)
		}
	}
	return loc
}

// zoneAdapter maps *time.Location to its IANA name. A zone its name would not restore,
// such as a time.FixedZone, is written as {"zone": name, "offset": seconds east of UTC}.
type zoneAdapter struct{}

func (zoneAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Type() == locationType }

func (zoneAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	f := ctx.Factory()
	if v.IsNil() {
		return f.NewPrimitive(nil), nil
	}
	loc := v.Interface().(*time.Location)
	name := loc.String()
	if named, err := converters.LoadZone(name); err == nil && sameOffsets(loc, named) {
		return f.NewPrimitive(name), nil
	}
	_, offset := zoneSamples[0].In(loc).Zone()
	obj := objectTarget(ctx)
	if err := obj.Put("zone", f.NewPrimitive(name)); err != nil {
		return nil, ctx.Fail(v.Type(), err)
	}
	if err := obj.Put("offset", f.NewPrimitive(int64(offset))); err != nil {
		return nil, ctx.Fail(v.Type(), err)
	}
	return obj, nil
}

func sameOffsets(a, b *time.Location) bool {
	for _, t := range zoneSamples {
		_, x := t.In(a).Zone()
		_, y := t.In(b).Zone()
		if x != y {
			return false
		}
	}
	return true
}

func (zoneAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	if d.Type != locationType {
		return false
	}
	switch n.(type) {
	case *node.Primitive, *node.Object:
		return true
	}
	return false
}

func (zoneAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	if obj, ok := n.(*node.Object); ok {
		name, _, err := zoneField(obj)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		offset, hasOffset, err := offsetField(obj)
		if err != nil {
			return reflect.Value{}, ctx.Fail(d.Type, err)
		}
		if hasOffset {
			return reflect.ValueOf(zoneWithOffset(name, offset, zoneSamples...)), nil
		}
		n = ctx.Factory().NewPrimitive(name)
	}
	p, _ := primitiveOf(n)
	loc, err := converters.LoadZone(p.Value())
	if err != nil {
		return reflect.Value{}, ctx.Fail(d.Type, err)
	}
	return reflect.ValueOf(loc), nil
}
