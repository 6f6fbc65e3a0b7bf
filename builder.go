package translator

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/Station-Manager/translator/source"
)

// Builder provides a fluent API to assemble a Configuration: options,
// providers, value types and field descriptors are collected first, then
// resolved and validated once by Build.
type Builder struct {
	opts         []Option
	providers    []source.Provider
	extensions   []string // nil means every registered extension
	noExtensions bool
	valueTypes   map[reflect.Type]ConverterFunc
	overrides    map[reflect.Type]map[string]FieldDescriptor
	converters   map[reflect.Type]map[string]ConverterFunc
	global       map[string]ConverterFunc
	named        map[string]map[string]FieldDescriptor
	errs         []error
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{
		valueTypes: make(map[reflect.Type]ConverterFunc),
		overrides:  make(map[reflect.Type]map[string]FieldDescriptor),
		converters: make(map[reflect.Type]map[string]ConverterFunc),
		global:     make(map[string]ConverterFunc),
		named:      make(map[string]map[string]FieldDescriptor),
	}
}

// WithOptions appends configuration options to the builder.
func (b *Builder) WithOptions(opts ...Option) *Builder { b.opts = append(b.opts, opts...); return b }

// AddProvider appends a resolver provider after the reflection provider and
// the registered extensions.
func (b *Builder) AddProvider(p source.Provider) *Builder {
	b.providers = append(b.providers, p)
	return b
}

// WithExtensions restricts the registered extensions to the named ones.
func (b *Builder) WithExtensions(names ...string) *Builder {
	b.extensions = append(b.extensions[:0:0], names...)
	return b
}

// WithoutExtensions leaves only the reflection provider and explicitly
// added providers.
func (b *Builder) WithoutExtensions() *Builder { b.noExtensions = true; return b }

// AddValueType registers fn as the direct conversion into dst's type,
// replacing any built-in conversion for it.
func (b *Builder) AddValueType(dst any, fn ConverterFunc) *Builder {
	b.valueTypes[typeOf(dst)] = fn
	return b
}

// Describe overrides the tag-derived descriptors of a destination type.
// Each descriptor replaces the one for the field of the same Name.
func (b *Builder) Describe(dst any, fields ...FieldDescriptor) *Builder {
	dt := structTypeOf(dst)
	if dt == nil {
		b.errs = append(b.errs, fmt.Errorf("describe: %T is not a struct type", dst))
		return b
	}
	m := b.overrides[dt]
	if m == nil {
		m = make(map[string]FieldDescriptor)
		b.overrides[dt] = m
	}
	for _, fd := range fields {
		if fd.Name == "" {
			b.errs = append(b.errs, fmt.Errorf("describe %s: field descriptor without a name", dt))
			continue
		}
		if _, ok := dt.FieldByName(fd.Name); !ok {
			b.errs = append(b.errs, fmt.Errorf("describe %s: no field %s", dt, fd.Name))
			continue
		}
		m[fd.Name] = fd
	}
	return b
}

// AddConverter registers a converter for every destination field with the
// given name. Converters registered for a type with AddConverterFor, or set
// on a descriptor, take precedence.
func (b *Builder) AddConverter(field string, fn ConverterFunc) *Builder {
	b.global[field] = fn
	return b
}

// AddConverterFor registers a converter for one field of a destination type.
func (b *Builder) AddConverterFor(dst any, field string, fn ConverterFunc) *Builder {
	dt := structTypeOf(dst)
	if dt == nil {
		b.errs = append(b.errs, fmt.Errorf("converter for %s: %T is not a struct type", field, dst))
		return b
	}
	m := b.converters[dt]
	if m == nil {
		m = make(map[string]ConverterFunc)
		b.converters[dt] = m
	}
	m[field] = fn
	return b
}

// WithFile applies a parsed configuration file.
func (b *Builder) WithFile(fc *FileConfig) *Builder {
	if fc == nil {
		return b
	}
	if fc.DefensiveCopies != nil {
		b.opts = append(b.opts, WithDefensiveCopies(*fc.DefensiveCopies))
	}
	if fc.SourcePropertyRequired != nil {
		b.opts = append(b.opts, WithSourcePropertyRequired(*fc.SourcePropertyRequired))
	}
	if fc.AccessMode != "" {
		mode, err := parseAccessMode(fc.AccessMode)
		if err != nil {
			b.errs = append(b.errs, err)
		} else {
			b.opts = append(b.opts, WithDefaultAccessMode(mode))
		}
	}
	if fc.Extensions != nil {
		b.WithExtensions(fc.Extensions...)
	}
	for typeName, tm := range fc.Types {
		fields, err := tm.descriptors()
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("type %s: %w", typeName, err))
			continue
		}
		m := b.named[typeName]
		if m == nil {
			m = make(map[string]FieldDescriptor, len(fields))
			b.named[typeName] = m
		}
		for _, fd := range fields {
			m[fd.Name] = fd
		}
	}
	return b
}

// Build resolves the provider list and returns the Configuration. Optional
// extensions that fail to construct are logged and skipped.
func (b *Builder) Build() (*Configuration, error) {
	opts := defaultOptions()
	for _, f := range b.opts {
		f(&opts)
	}
	if opts.Log == nil {
		opts.Log = defaultOptions().Log
	}
	if opts.DefaultAccessMode == DefaultAccess {
		opts.DefaultAccessMode = FieldAccess
	}
	c := &Configuration{
		options:    opts,
		providers:  []source.Provider{source.NewReflection()},
		valueTypes: defaultValueTypes(),
		overrides:  make(map[reflect.Type]map[string]FieldDescriptor, len(b.overrides)),
		named:      make(map[string]map[string]FieldDescriptor, len(b.named)),
		converters: make(map[string]ConverterFunc, len(b.global)),

		fieldConverters: make(map[reflect.Type]map[string]ConverterFunc, len(b.converters)),
	}
	if !b.noExtensions {
		for _, ext := range source.Extensions() {
			if b.extensions != nil && !slices.Contains(b.extensions, ext.Name) {
				continue
			}
			p, err := newExtension(ext)
			if err != nil {
				opts.Log.Warn("skipping resolver extension", "extension", ext.Name, "error", err)
				continue
			}
			opts.Log.Debug("resolver extension enabled", "extension", ext.Name)
			c.providers = append(c.providers, p)
		}
	}
	for i, p := range b.providers {
		if p == nil {
			return nil, fmt.Errorf("provider %d is nil", i)
		}
		c.providers = append(c.providers, p)
	}
	for t, fn := range b.valueTypes {
		c.valueTypes[t] = fn
	}
	for t, m := range b.overrides {
		c.overrides[t] = copyDescriptors(m)
	}
	for t, m := range b.converters {
		sub := make(map[string]ConverterFunc, len(m))
		for field, fn := range m {
			if err := checkField(t, field); err != nil {
				return nil, fmt.Errorf("converter for %s: %w", t, err)
			}
			sub[field] = fn
		}
		c.fieldConverters[t] = sub
	}
	for field, fn := range b.global {
		c.converters[field] = fn
	}
	for name, m := range b.named {
		c.named[name] = copyDescriptors(m)
	}
	if len(b.errs) > 0 {
		return c, fmt.Errorf("building configuration: %w", b.errs[0])
	}
	return c, nil
}

func newExtension(ext source.Extension) (p source.Provider, err error) {
	if ext.New == nil {
		return nil, &ExtensionUnavailableError{Name: ext.Name, Err: fmt.Errorf("no constructor")}
	}
	p, err = ext.New()
	if err != nil {
		return nil, &ExtensionUnavailableError{Name: ext.Name, Err: err}
	}
	if p == nil {
		return nil, &ExtensionUnavailableError{Name: ext.Name, Err: fmt.Errorf("constructor returned no provider")}
	}
	return p, nil
}

// checkField reports a missing field or a malformed tag on it.
func checkField(t reflect.Type, name string) error {
	sf, ok := t.FieldByName(name)
	if !ok {
		return fmt.Errorf("no field %s", name)
	}
	var fd FieldDescriptor
	if err := parseTag(sf.Tag.Get(TagName), &fd); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return nil
}

func copyDescriptors(m map[string]FieldDescriptor) map[string]FieldDescriptor {
	out := make(map[string]FieldDescriptor, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func typeOf(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}

func structTypeOf(v any) reflect.Type {
	t := typeOf(v)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}
