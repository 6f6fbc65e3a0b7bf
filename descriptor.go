package translator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Station-Manager/translator/source"
)

// TagName is the struct tag read for field translation settings.
//
//	type OrderView struct {
//	    Customer *CustomerView `translate:"translate"`
//	    Total    float64       `translate:"source=expr:Quantity * UnitPrice;required"`
//	    Lines    []LineView    `translate:"itemSource=Line"`
//	    Internal string        `translate:"-"`
//	}
const TagName = "translate"

// AccessMode selects field or accessor-method reads.
type AccessMode = source.AccessMode

const (
	DefaultAccess  = source.DefaultAccess
	FieldAccess    = source.FieldAccess
	PropertyAccess = source.PropertyAccess
)

// ConverterFunc converts a resolved source value before it is assigned.
type ConverterFunc func(src any) (any, error)

// Optionality overrides the configuration's source-property requirement for
// one field.
type Optionality int

const (
	DefaultOptionality Optionality = iota // follow Configuration.SourcePropertyRequired
	Required                              // fail when the source property is missing
	Optional                              // leave the field untouched when missing
)

// FieldDescriptor describes how one destination field is populated.
type FieldDescriptor struct {
	Name        string        // destination field name
	Source      string        // source expression; defaults to Name
	Translate   bool          // always translate instead of copying by reference
	Update      bool          // update an existing destination value in place
	Optionality Optionality   // requiredness override
	Access      AccessMode    // access mode override for the reflection provider
	Ignore      bool          // never populated
	Converter   ConverterFunc // applied to the resolved value before assignment
	Item        CollectionDescriptor
}

// CollectionDescriptor drives translation of collection and array fields.
type CollectionDescriptor struct {
	ItemType       reflect.Type // destination item type; defaults to the field's element type
	TranslateItems bool         // translate each item even when it could be copied
	ItemSource     string       // expression applied to each source item first
}

func (fd *FieldDescriptor) expression() string {
	if s := strings.TrimSpace(fd.Source); s != "" {
		return s
	}
	return fd.Name
}

func (fd *FieldDescriptor) required(cfg *Configuration) bool {
	switch fd.Optionality {
	case Required:
		return true
	case Optional:
		return false
	}
	return cfg.options.SourcePropertyRequired
}

func (fd *FieldDescriptor) access(cfg *Configuration) AccessMode {
	if fd.Access != DefaultAccess {
		return fd.Access
	}
	return cfg.options.DefaultAccessMode
}

// parseTag applies a translate tag to fd.
func parseTag(tag string, fd *FieldDescriptor) error {
	tag = strings.TrimSpace(tag)
	if tag == "-" || tag == "ignore" {
		fd.Ignore = true
		return nil
	}
	for _, item := range strings.Split(tag, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, _ := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "source":
			fd.Source = value
		case "translate":
			fd.Translate = true
			fd.Item.TranslateItems = true
		case "update":
			fd.Update = true
		case "required":
			fd.Optionality = Required
		case "optional":
			fd.Optionality = Optional
		case "ignore":
			fd.Ignore = true
		case "access":
			mode, err := parseAccessMode(value)
			if err != nil {
				return err
			}
			fd.Access = mode
		case "itemSource":
			fd.Item.ItemSource = value
		default:
			return fmt.Errorf("unknown %s tag option %q", TagName, key)
		}
	}
	return nil
}

func parseAccessMode(s string) (AccessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return DefaultAccess, nil
	case "field":
		return FieldAccess, nil
	case "property":
		return PropertyAccess, nil
	}
	return DefaultAccess, fmt.Errorf("unknown access mode %q", s)
}

func parseOptionality(s string) (Optionality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return DefaultOptionality, nil
	case "required":
		return Required, nil
	case "optional":
		return Optional, nil
	}
	return DefaultOptionality, fmt.Errorf("unknown optionality %q", s)
}

// ComposeConverters chains converters left-to-right. An error aborts and a
// nil output is returned immediately.
func ComposeConverters(fns ...ConverterFunc) ConverterFunc {
	return func(src any) (any, error) {
		cur := src
		for _, fn := range fns {
			out, err := fn(cur)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, nil
			}
			cur = out
		}
		return cur, nil
	}
}

// MapString returns a ConverterFunc applying f when src is a string;
// otherwise src is returned unchanged.
func MapString(f func(string) string) ConverterFunc {
	return func(src any) (any, error) {
		if s, ok := src.(string); ok {
			return f(s), nil
		}
		return src, nil
	}
}
