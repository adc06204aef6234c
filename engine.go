package jsonconv

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/hengadev/errsx"
	"golang.org/x/sync/errgroup"

	"github.com/Station-Manager/jsonconv/node"
	"github.com/Station-Manager/jsonconv/typedesc"
)

// Engine converts Go values to and from node trees. It owns its adapter registry, so
// engines with different registrations and opt-ins can coexist.
//
// An Engine is safe for concurrent use; registration may happen while conversions run.
// Each conversion sees the registry as it was when the conversion started.
type Engine struct {
	reg           atomic.Value // holds *registry
	mu            sync.Mutex   // serializes registry writers
	metadataCache sync.Map     // map[reflect.Type]*structMetadata
	config        Config
}

// New creates an Engine with default configuration and the built-in adapters.
func New() *Engine { return NewWithOptions() }

// NewWithOptions creates an Engine whose base configuration is shaped by opts. Per-call
// options passed to the conversion methods are applied on top of it.
func NewWithOptions(opts ...Option) *Engine {
	e := &Engine{config: defaultConfig().apply(opts...)}
	e.reg.Store(newRegistry())
	return e
}

// Config returns the engine's base configuration.
func (e *Engine) Config() Config { return e.config }

func (e *Engine) snapshot() *registry { return e.reg.Load().(*registry) }

func (e *Engine) newContext(opts []Option) *Context {
	cfg := e.config
	if len(opts) > 0 {
		cfg = cfg.apply(opts...)
	}
	return &Context{engine: e, reg: e.snapshot(), cfg: &cfg, path: rootPath, state: &opState{}}
}

// Serialize converts v into a fresh node.
func (e *Engine) Serialize(v any, opts ...Option) (node.Node, error) {
	return e.newContext(opts).Serialize(reflect.ValueOf(v))
}

// SerializeInto converts v using target as the current node: objects are merged into an
// Object target and elements appended to an Array target. A result the serializer did not
// merge itself is merged here when the shapes allow it.
func (e *Engine) SerializeInto(v any, target node.Node, opts ...Option) error {
	if target == nil {
		return fmt.Errorf("jsonconv: SerializeInto needs a target node")
	}
	ctx := e.newContext(opts).WithTarget(target)
	n, err := ctx.Serialize(reflect.ValueOf(v))
	if err != nil {
		return err
	}
	return mergeInto(target, n)
}

func mergeInto(target, n node.Node) error {
	if n == target {
		return nil
	}
	switch t := target.(type) {
	case *node.Array:
		return t.Add(n)
	case *node.Object:
		src, ok := n.(*node.Object)
		if !ok {
			return fmt.Errorf("jsonconv: cannot merge %s into object", n.Kind())
		}
		for _, k := range src.Keys() {
			child, _ := src.Get(k)
			if err := t.Put(k, child); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("jsonconv: cannot merge into %s", target.Kind())
}

// Deserialize converts n into a value of type target. A nil target yields the raw
// unwrapped value (map[string]any, []any, scalars).
func (e *Engine) Deserialize(n node.Node, target reflect.Type, opts ...Option) (any, error) {
	v, _, err := e.deserialize(n, target, opts)
	return v, err
}

// DeserializeReport is Deserialize that also returns the errors IgnoreConversionErrors
// suppressed, keyed by JSON path. The map is nil when nothing was suppressed.
func (e *Engine) DeserializeReport(n node.Node, target reflect.Type, opts ...Option) (any, errsx.Map, error) {
	return e.deserialize(n, target, opts)
}

func (e *Engine) deserialize(n node.Node, target reflect.Type, opts []Option) (any, errsx.Map, error) {
	ctx := e.newContext(opts)
	d := typedesc.Describe(target)
	v, err := ctx.Deserialize(n, d)
	if err = ctx.Recover(err); err != nil {
		return nil, ctx.Suppressed(), err
	}
	if !v.IsValid() {
		v = d.Zero()
	}
	if !v.CanInterface() {
		return nil, ctx.Suppressed(), nil
	}
	return v.Interface(), ctx.Suppressed(), nil
}

// DeserializeInto converts n and stores the result in the value ptr points to.
func (e *Engine) DeserializeInto(n node.Node, ptr any, opts ...Option) error {
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return fmt.Errorf("jsonconv: DeserializeInto needs a non-nil pointer, got %T", ptr)
	}
	ctx := e.newContext(opts)
	d := typedesc.Describe(pv.Type().Elem())
	v, err := ctx.Deserialize(n, d)
	if err = ctx.Recover(err); err != nil {
		return err
	}
	if !v.IsValid() {
		v = d.Zero()
	}
	pv.Elem().Set(v)
	return nil
}

// Marshal serializes v and prints the tree as compact JSON text.
func (e *Engine) Marshal(v any, opts ...Option) ([]byte, error) {
	n, err := e.Serialize(v, opts...)
	if err != nil {
		return nil, err
	}
	return node.Marshal(n)
}

// Unmarshal parses data and deserializes the tree into the value ptr points to.
func (e *Engine) Unmarshal(data []byte, ptr any, opts ...Option) error {
	n, err := node.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("jsonconv: unmarshal failed: %w", err)
	}
	return e.DeserializeInto(n, ptr, opts...)
}

// SerializeBatch serializes values concurrently, keeping their order. The first error
// cancels the remaining work.
func (e *Engine) SerializeBatch(ctx context.Context, values []any, opts ...Option) ([]node.Node, error) {
	out := make([]node.Node, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit(opts))
	for i, v := range values {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := e.Serialize(v, opts...)
			if err != nil {
				return fmt.Errorf("jsonconv: batch item %d: %w", i, err)
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeserializeBatch deserializes nodes concurrently into values of type target.
func (e *Engine) DeserializeBatch(ctx context.Context, nodes []node.Node, target reflect.Type, opts ...Option) ([]any, error) {
	out := make([]any, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit(opts))
	for i, n := range nodes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := e.Deserialize(n, target, opts...)
			if err != nil {
				return fmt.Errorf("jsonconv: batch item %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) batchLimit(opts []Option) int {
	cfg := e.config.apply(opts...)
	if cfg.BatchLimit > 0 {
		return cfg.BatchLimit
	}
	return -1
}
