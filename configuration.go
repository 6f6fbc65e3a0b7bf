package translator

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/Station-Manager/translator/source"
)

// Options holds configuration-wide translation policy.
type Options struct {
	PerformDefensiveCopies bool         // copy collections and arrays even when items need no translation
	SourcePropertyRequired bool         // fail when a field's source expression cannot be resolved
	DefaultAccessMode      AccessMode   // how the reflection provider reads bare expressions
	Log                    *slog.Logger // extension discovery and diagnostics
}

type Option func(*Options)

func WithDefensiveCopies(v bool) Option { return func(o *Options) { o.PerformDefensiveCopies = v } }
func WithSourcePropertyRequired(v bool) Option {
	return func(o *Options) { o.SourcePropertyRequired = v }
}
func WithDefaultAccessMode(m AccessMode) Option {
	return func(o *Options) { o.DefaultAccessMode = m }
}
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Log = l } }

func defaultOptions() Options {
	return Options{
		PerformDefensiveCopies: true,
		SourcePropertyRequired: true,
		DefaultAccessMode:      FieldAccess,
		Log:                    slog.Default(),
	}
}

// Configuration is the shared, read-only policy of translation sessions:
// flags, the ordered resolver providers, value types, per-type field
// overrides and the per-type object translators built from them.
//
// A Configuration is safe for concurrent use by any number of sessions.
type Configuration struct {
	options         Options
	providers       []source.Provider
	valueTypes      map[reflect.Type]ConverterFunc
	overrides       map[reflect.Type]map[string]FieldDescriptor
	named           map[string]map[string]FieldDescriptor // keyed by reflect.Type.String()
	fieldConverters map[reflect.Type]map[string]ConverterFunc
	converters      map[string]ConverterFunc // by field name, any destination type
	translators     sync.Map                 // map[reflect.Type]*objectTranslator
}

// New creates a Configuration with default options and every registered
// extension provider.
func New() *Configuration { return NewWithOptions() }

// NewWithOptions creates a Configuration with the provided options.
func NewWithOptions(opts ...Option) *Configuration {
	c, _ := NewBuilder().WithOptions(opts...).Build()
	return c
}

// PerformDefensiveCopies reports whether collections are always copied.
func (c *Configuration) PerformDefensiveCopies() bool { return c.options.PerformDefensiveCopies }

// SourcePropertyRequired reports whether an unresolved source expression
// fails a field that does not set its own optionality.
func (c *Configuration) SourcePropertyRequired() bool { return c.options.SourcePropertyRequired }

// DefaultAccessMode returns the access mode of fields that do not set one.
func (c *Configuration) DefaultAccessMode() AccessMode { return c.options.DefaultAccessMode }

// Logger returns the configuration's logger.
func (c *Configuration) Logger() *slog.Logger { return c.options.Log }

// Providers returns the resolver providers in lookup order.
func (c *Configuration) Providers() []source.Provider {
	out := make([]source.Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// Resolve evaluates expression against src through the provider chain.
func (c *Configuration) Resolve(expression string, src any, vars map[string]any) (any, error) {
	return c.resolve(expression, src, source.Context{Variables: vars, Access: c.options.DefaultAccessMode})
}

// resolve runs the provider chain. A bare expression goes to every provider
// in order; "prefix:rest" goes only to providers claiming prefix, with rest.
// The first provider to find a value wins.
func (c *Configuration) resolve(expression string, src any, ctx source.Context) (any, error) {
	expression = strings.TrimSpace(expression)
	prefix := prefixOf(expression)
	body := expression
	if prefix != "" {
		body = expression[len(prefix)+1:]
	}
	ctx.Prefix = prefix
	for _, p := range c.providers {
		if prefix != "" && !p.SupportsPrefix(prefix) {
			continue
		}
		v, found, err := p.Resolve(body, src, ctx)
		if err != nil {
			return nil, err
		}
		if found {
			return v, nil
		}
	}
	return nil, &MissingSourcePropertyError{Expression: expression}
}

// prefixOf returns the text before the first colon, provided the colon is
// neither the first nor the last character.
func prefixOf(expression string) string {
	i := strings.IndexByte(expression, ':')
	if i > 0 && i < len(expression)-1 {
		return expression[:i]
	}
	return ""
}

// translatorFor returns the cached object translator for a struct type.
func (c *Configuration) translatorFor(typ reflect.Type) (*objectTranslator, error) {
	if cached, ok := c.translators.Load(typ); ok {
		return cached.(*objectTranslator), nil
	}
	t, err := c.buildTranslator(typ)
	if err != nil {
		return nil, err
	}
	actual, _ := c.translators.LoadOrStore(typ, t)
	return actual.(*objectTranslator), nil
}

// WarmTranslators pre-builds object translators for the given example values
// or types (pass T, *T or a reflect.Type).
func (c *Configuration) WarmTranslators(examples ...any) error {
	for _, e := range examples {
		if e == nil {
			continue
		}
		t, ok := e.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(e)
		}
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			continue
		}
		if _, err := c.translatorFor(t); err != nil {
			return err
		}
	}
	return nil
}

// Descriptors returns the effective field descriptors for a destination
// struct type.
func (c *Configuration) Descriptors(dst any) ([]FieldDescriptor, error) {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	ot, err := c.translatorFor(t)
	if err != nil {
		return nil, err
	}
	out := make([]FieldDescriptor, len(ot.fields))
	for i := range ot.fields {
		out[i] = ot.fields[i].FieldDescriptor
	}
	return out, nil
}
