package jsonconv

import (
	"fmt"
	"math"
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// bitmapAdapter writes a *roaring.Bitmap as the ascending array of its members.
type bitmapAdapter struct{}

func (bitmapAdapter) MatchSerialize(v reflect.Value, _ *Context) bool { return v.Type() == bitmapType }

func (bitmapAdapter) Serialize(v reflect.Value, ctx *Context) (node.Node, error) {
	if v.IsNil() {
		return ctx.Factory().NewPrimitive(nil), nil
	}
	arr := arrayTarget(ctx)
	for _, x := range v.Interface().(*roaring.Bitmap).ToArray() {
		if err := arr.Add(ctx.Factory().NewPrimitive(uint64(x))); err != nil {
			return nil, ctx.Fail(bitmapType, err)
		}
	}
	return arr, nil
}

func (bitmapAdapter) MatchDeserialize(n node.Node, d typedesc.Descriptor) bool {
	_, ok := n.(*node.Array)
	return ok && d.Type == bitmapType
}

func (bitmapAdapter) Deserialize(n node.Node, d typedesc.Descriptor, ctx *Context) (reflect.Value, error) {
	bm := roaring.New()
	for i, item := range n.(*node.Array).Items() {
		p, ok := primitiveOf(item)
		if !ok || p.IsNull() {
			return reflect.Value{}, ctx.Index(i).Failf(d.Type, "bitmap member must be a number, got %s", item.Kind())
		}
		u, err := toUint64(p.Value())
		if err == nil && u > math.MaxUint32 {
			err = fmt.Errorf("%d exceeds uint32", u)
		}
		if err != nil {
			return reflect.Value{}, ctx.Index(i).Fail(d.Type, err)
		}
		bm.Add(uint32(u))
	}
	return reflect.ValueOf(bm), nil
}
