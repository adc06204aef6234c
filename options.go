package jsonconv

import (
	"log/slog"
	"time"

	"github.com/Station-Manager/jsonconv/converters"
	"github.com/Station-Manager/jsonconv/node"
)

// KeyOrdering controls the key order of objects built from Go maps.
type KeyOrdering int

const (
	KeyOrderSorted  KeyOrdering = iota // default: map keys sorted by their string form
	KeyOrderNatural                    // map iteration order, no sorting cost
)

const defaultMaxDepth = 512

// Config is the per-operation configuration carried by a Context.
type Config struct {
	// DateFormat selects how temporal values are rendered: "" or "milliseconds" for
	// epoch millis, "seconds" for epoch seconds, anything else is a date pattern.
	DateFormat             string
	IgnoreConversionErrors bool           // zero the failing field/element and continue
	KeyOrdering            KeyOrdering    // ordering of keys produced from Go maps
	CaseInsensitiveKeys    bool           // match object keys to struct fields ignoring case
	IgnoreNullFields       bool           // drop struct fields that serialize to null
	MaxDepth               int            // recursion bound, defaultMaxDepth when <= 0
	Location               *time.Location // zone for patterns without zone, UTC when nil
	BatchLimit             int            // concurrent conversions in Serialize/DeserializeBatch, 0 = unlimited
	Logger                 *slog.Logger
	Factory                node.Factory
}

type Option func(*Config)

func WithDateFormat(format string) Option { return func(c *Config) { c.DateFormat = format } }
func WithEpochMillis() Option             { return WithDateFormat(converters.FormatMillis) }
func WithEpochSeconds() Option            { return WithDateFormat(converters.FormatSeconds) }
func WithIgnoreConversionErrors(v bool) Option {
	return func(c *Config) { c.IgnoreConversionErrors = v }
}
func WithKeyOrdering(o KeyOrdering) Option   { return func(c *Config) { c.KeyOrdering = o } }
func WithCaseInsensitiveKeys(v bool) Option  { return func(c *Config) { c.CaseInsensitiveKeys = v } }
func WithIgnoreNullFields(v bool) Option     { return func(c *Config) { c.IgnoreNullFields = v } }
func WithMaxDepth(n int) Option              { return func(c *Config) { c.MaxDepth = n } }
func WithLocation(loc *time.Location) Option { return func(c *Config) { c.Location = loc } }
func WithBatchLimit(n int) Option            { return func(c *Config) { c.BatchLimit = n } }
func WithLogger(l *slog.Logger) Option       { return func(c *Config) { c.Logger = l } }
func WithFactory(f node.Factory) Option      { return func(c *Config) { c.Factory = f } }

func defaultConfig() Config {
	return Config{KeyOrdering: KeyOrderSorted, MaxDepth: defaultMaxDepth}
}

// apply returns a copy of c with opts applied and empty collaborators filled in.
func (c Config) apply(opts ...Option) Config {
	for _, f := range opts {
		f(&c)
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Factory == nil {
		c.Factory = node.DefaultFactory
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}
