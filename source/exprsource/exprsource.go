// Package exprsource adds the "expr:" expression dialect, backed by
// github.com/expr-lang/expr. Importing the package registers the dialect:
//
//	import _ "github.com/Station-Manager/translator/source/exprsource"
//
// Expressions see the session variables, the exported fields (or string map
// keys) of the source object, and the source object itself as "source":
//
//	translate:"source=expr:Quantity * UnitPrice"
//	translate:"source=expr:FirstName + ' ' + LastName"
package exprsource

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Station-Manager/translator/source"
)

// Prefix is the expression prefix claimed by this dialect.
const Prefix = "expr"

// SourceKey names the source object in the expression environment.
const SourceKey = "source"

func init() {
	source.Register(Prefix, func() (source.Provider, error) { return New(), nil })
}

// Provider evaluates expr-lang expressions. Compiled programs are cached per
// expression text and shared by every session using the configuration.
type Provider struct {
	programs sync.Map // map[string]*vm.Program
}

// New returns an expr dialect provider.
func New() *Provider { return &Provider{} }

func (p *Provider) SupportsPrefix(prefix string) bool { return prefix == Prefix }

// Resolve compiles (once) and runs expression. Only prefixed expressions are
// evaluated; a bare expression is left to the other providers.
func (p *Provider) Resolve(expression string, src any, ctx source.Context) (any, bool, error) {
	if ctx.Prefix != Prefix {
		return nil, false, nil
	}
	prg, err := p.program(expression)
	if err != nil {
		return nil, false, err
	}
	out, err := expr.Run(prg, environment(src, ctx.Variables))
	if err != nil {
		return nil, false, fmt.Errorf("evaluating %q: %w", expression, err)
	}
	return out, true, nil
}

func (p *Provider) program(expression string) (*vm.Program, error) {
	if cached, ok := p.programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", expression, err)
	}
	actual, _ := p.programs.LoadOrStore(expression, prg)
	return actual.(*vm.Program), nil
}

// environment flattens the source into a map so that expressions can refer to
// its fields directly. Fields shadow variables of the same name.
func environment(src any, vars map[string]any) map[string]any {
	env := make(map[string]any, len(vars)+8)
	for k, v := range vars {
		env[k] = v
	}
	val := reflect.ValueOf(src)
	for val.IsValid() && (val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface) {
		if val.IsNil() {
			break
		}
		val = val.Elem()
	}
	switch val.Kind() {
	case reflect.Struct:
		// Promoted fields of embedded structs are visible too.
		for _, f := range reflect.VisibleFields(val.Type()) {
			if !f.IsExported() {
				continue
			}
			fv, err := val.FieldByIndexErr(f.Index)
			if err != nil {
				continue
			}
			env[f.Name] = fv.Interface()
		}
	case reflect.Map:
		if val.Type().Key().Kind() == reflect.String {
			iter := val.MapRange()
			for iter.Next() {
				env[iter.Key().String()] = iter.Value().Interface()
			}
		}
	}
	env[SourceKey] = src
	return env
}
