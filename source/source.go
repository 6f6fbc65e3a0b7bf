// Package source defines how translation reads values out of source objects.
//
// A Provider resolves an expression against a source object. Providers are
// chained by the translator configuration: bare expressions are offered to
// every provider in order, while "prefix:expression" forms are offered only to
// providers claiming that prefix. The reflection provider is always present;
// other dialects register themselves with Register, typically from an init
// function in their own package:
//
//	import _ "github.com/Station-Manager/translator/source/exprsource"
package source

import (
	"sync"
)

// AccessMode selects how the reflection provider reads a named property.
type AccessMode int

const (
	DefaultAccess  AccessMode = iota // defer to the configuration default
	FieldAccess                      // exported struct fields and map keys
	PropertyAccess                   // accessor methods first, then fields
)

func (m AccessMode) String() string {
	switch m {
	case FieldAccess:
		return "field"
	case PropertyAccess:
		return "property"
	default:
		return "default"
	}
}

// Context carries per-lookup state from the translation session.
type Context struct {
	Prefix    string         // prefix the expression was dispatched under, "" for bare expressions
	Variables map[string]any // session variables, never mutated by providers
	Access    AccessMode     // effective access mode for the field being populated
}

// Provider extracts a value from a source object given an expression.
//
// Resolve reports found=false when the provider cannot make sense of the
// expression for this source; the next provider is tried. A non-nil error
// aborts resolution altogether.
type Provider interface {
	SupportsPrefix(prefix string) bool
	Resolve(expression string, src any, ctx Context) (value any, found bool, err error)
}

// Constructor builds an optional provider. Returning an error marks the
// extension unavailable; the configuration carries on without it.
type Constructor func() (Provider, error)

// Extension is a named, optionally available provider.
type Extension struct {
	Name string
	New  Constructor
}

var (
	extMu      sync.Mutex
	extensions []Extension
)

// Register adds an extension provider. Registering the same name twice
// replaces the earlier constructor, keeping its position.
func Register(name string, fn Constructor) {
	extMu.Lock()
	defer extMu.Unlock()
	for i := range extensions {
		if extensions[i].Name == name {
			extensions[i].New = fn
			return
		}
	}
	extensions = append(extensions, Extension{Name: name, New: fn})
}

// Extensions returns the registered extensions in registration order.
func Extensions() []Extension {
	extMu.Lock()
	defer extMu.Unlock()
	out := make([]Extension, len(extensions))
	copy(out, extensions)
	return out
}

// Unregister removes the named extension, reporting whether it was present.
func Unregister(name string) bool {
	extMu.Lock()
	defer extMu.Unlock()
	for i := range extensions {
		if extensions[i].Name == name {
			extensions = append(extensions[:i], extensions[i+1:]...)
			return true
		}
	}
	return false
}
