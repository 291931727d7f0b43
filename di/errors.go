package di

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNilConstructor is returned when a component is registered without a constructor.
	ErrNilConstructor = errors.New("di: nil constructor")

	// ErrNilInstance is returned when a constructor produces a nil instance.
	ErrNilInstance = errors.New("di: constructor returned nil instance")

	// ErrInvalidIdentifier is wrapped by InvalidIdentifierError.
	ErrInvalidIdentifier = errors.New("di: invalid identifier")

	// ErrInvalidScope is wrapped by InvalidScopeError.
	ErrInvalidScope = errors.New("di: invalid scope")

	// ErrRegistrySealed is returned by Register once the registry has been woven.
	ErrRegistrySealed = errors.New("di: registry sealed")

	// ErrClearNotAllowed is returned by Clear outside test or development mode.
	ErrClearNotAllowed = errors.New("di: clear is only allowed in test or development mode")
)

// DuplicateRegistrationError is returned when a record in the target module
// already uses the same alias, type, or constructor name.
type DuplicateRegistrationError struct {
	Module string

	// Field is one of "alias", "type" or "ctorName".
	Field string

	Value string
}

// Error implements the error interface.
func (e DuplicateRegistrationError) Error() string {
	// Example: di: duplicate registration in module "default": alias "userApi"
	return "di: duplicate registration in module " + strconv.Quote(e.Module) +
		": " + e.Field + " " + strconv.Quote(e.Value)
}

// AmbiguousDependencyError is returned when type inference finds several
// candidates and no single one is bound exactly to the requested type.
type AmbiguousDependencyError struct {
	Module     string
	Type       string
	Candidates []string
}

// Error implements the error interface.
func (e AmbiguousDependencyError) Error() string {
	// Example: di: ambiguous dependency di_test.Animal in module "default" (dog, cat)
	return "di: ambiguous dependency " + e.Type + " in module " + strconv.Quote(e.Module) +
		" (" + strings.Join(e.Candidates, ", ") + ")"
}

// InvalidIdentifierError reports a module or alias that is not a legal identifier.
type InvalidIdentifierError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (e InvalidIdentifierError) Error() string {
	return "di: invalid " + e.Field + " " + strconv.Quote(e.Value)
}

// Unwrap lets errors.Is match ErrInvalidIdentifier.
func (e InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// InvalidScopeError reports a scope value outside the known set.
type InvalidScopeError struct{ Scope Scope }

// Error implements the error interface.
func (e InvalidScopeError) Error() string {
	return "di: invalid scope " + strconv.Quote(string(e.Scope))
}

// Unwrap lets errors.Is match ErrInvalidScope.
func (e InvalidScopeError) Unwrap() error { return ErrInvalidScope }

// WrongTypeDependencyError is returned when a value exists but cannot be used
// as the requested type.
type WrongTypeDependencyError struct {
	// Name is the alias or expression the value was looked up by, if any.
	Name string

	// WantType is the requested type.
	WantType string

	// GotType is reflect.TypeOf(value).String() for the stored value.
	GotType string
}

// Error implements the error interface.
func (e WrongTypeDependencyError) Error() string {
	// Example: di: dependency "db" has wrong type (*mypkg.Logger, want *mypkg.DB)
	return "di: dependency " + strconv.Quote(e.Name) + " has wrong type (" + e.GotType + ", want " + e.WantType + ")"
}

// ConstructionError wraps a failure while building a new instance.
type ConstructionError struct {
	CtorName string
	Err      error
}

// Error implements the error interface.
func (e ConstructionError) Error() string {
	return "di: constructing " + strconv.Quote(e.CtorName) + ": " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e ConstructionError) Unwrap() error { return e.Err }
