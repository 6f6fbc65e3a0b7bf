package translator

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMissingSourceProperty matches any *MissingSourcePropertyError.
	ErrMissingSourceProperty = errors.New("missing source property")
	// ErrNoDestination is returned by Update when the destination is nil.
	ErrNoDestination = errors.New("no destination to update")
	// ErrTypeMismatch matches any *TypeMismatchError.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrExtensionUnavailable matches any *ExtensionUnavailableError.
	ErrExtensionUnavailable = errors.New("configuration extension unavailable")
)

// MissingSourcePropertyError reports a source expression that no provider
// could resolve.
type MissingSourcePropertyError struct {
	Expression string
}

func (e *MissingSourcePropertyError) Error() string {
	return fmt.Sprintf("missing source property %q", e.Expression)
}

func (e *MissingSourcePropertyError) Is(target error) bool { return target == ErrMissingSourceProperty }

// TypeMismatchError reports a value or destination whose type does not fit
// where it is being put.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot use %s as %s", typeName(e.Actual), typeName(e.Expected))
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ExtensionUnavailableError is logged, not returned, when an optional
// provider cannot be constructed.
type ExtensionUnavailableError struct {
	Name string
	Err  error
}

func (e *ExtensionUnavailableError) Error() string {
	return fmt.Sprintf("extension %s unavailable: %v", e.Name, e.Err)
}

func (e *ExtensionUnavailableError) Unwrap() error { return e.Err }

func (e *ExtensionUnavailableError) Is(target error) bool { return target == ErrExtensionUnavailable }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
