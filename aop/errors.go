package aop

import (
	"errors"
	"strconv"
)

var (
	// ErrAlreadyWoven is returned by a second call to Weave.
	ErrAlreadyWoven = errors.New("aop: already woven")

	// ErrNilAdvice is returned when an advice has no interceptor.
	ErrNilAdvice = errors.New("aop: nil advice")

	// ErrNilPointcut is returned when an advice item has no compiled pointcut.
	ErrNilPointcut = errors.New("aop: nil pointcut")

	// ErrNilReceiver is returned by Invoke for a nil receiver.
	ErrNilReceiver = errors.New("aop: nil receiver")

	// ErrMetadataPanic is returned if a metadata source panics internally.
	ErrMetadataPanic = errors.New("aop: panic during metadata lookup")
)

// InvalidKindError reports an unknown advice kind name or value.
type InvalidKindError struct{ Name string }

// Error implements the error interface.
func (e InvalidKindError) Error() string {
	return "aop: invalid advice kind " + strconv.Quote(e.Name)
}

// MethodNotFoundError is returned when the receiver has no such exported method.
type MethodNotFoundError struct {
	Type   string
	Method string
}

// Error implements the error interface.
func (e MethodNotFoundError) Error() string {
	// Example: aop: method "GetUsers" not found on *api.UserApi
	return "aop: method " + strconv.Quote(e.Method) + " not found on " + e.Type
}

// ResultTypeError is returned by Call when the result is not of the requested type.
type ResultTypeError struct {
	Method   string
	WantType string
	GotType  string
}

// Error implements the error interface.
func (e ResultTypeError) Error() string {
	return "aop: result of " + strconv.Quote(e.Method) + " is " + e.GotType + ", not " + e.WantType
}

// ArgumentError is returned when call arguments do not fit the method signature.
type ArgumentError struct {
	Method string

	// Index is the offending argument, or -1 for a count mismatch.
	Index int

	Reason string
}

// Error implements the error interface.
func (e ArgumentError) Error() string {
	if e.Index < 0 {
		return "aop: calling " + e.Method + ": " + e.Reason
	}
	return "aop: calling " + e.Method + ": argument " + strconv.Itoa(e.Index) + ": " + e.Reason
}
