package usecases

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a reading could not be turned into a volume
type ErrorKind int

const (
	EmptyInput ErrorKind = iota + 1
	NonIntegerInput
	NegativeValue
	OutOfRange
	UnknownFuel
	DecadeNotFound
	DigitNotFound
	MissingInput
	LookupFailed
	UnknownTank
)

var kindNames = map[ErrorKind]string{
	EmptyInput:      "EmptyInput",
	NonIntegerInput: "NonIntegerInput",
	NegativeValue:   "NegativeValue",
	OutOfRange:      "OutOfRange",
	UnknownFuel:     "UnknownFuel",
	DecadeNotFound:  "DecadeNotFound",
	DigitNotFound:   "DigitNotFound",
	MissingInput:    "MissingInput",
	LookupFailed:    "LookupFailed",
	UnknownTank:     "UnknownTank",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// LookupError is a recoverable validation or lookup failure. Message is meant
// to be shown to the operator as is.
type LookupError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	return e.Message
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is matches any LookupError of the same kind, so the Err* values below work
// with errors.Is.
func (e *LookupError) Is(target error) bool {
	var t *LookupError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrEmptyInput      = &LookupError{Kind: EmptyInput}
	ErrNonIntegerInput = &LookupError{Kind: NonIntegerInput}
	ErrNegativeValue   = &LookupError{Kind: NegativeValue}
	ErrOutOfRange      = &LookupError{Kind: OutOfRange}
	ErrUnknownFuel     = &LookupError{Kind: UnknownFuel}
	ErrDecadeNotFound  = &LookupError{Kind: DecadeNotFound}
	ErrDigitNotFound   = &LookupError{Kind: DigitNotFound}
	ErrMissingInput    = &LookupError{Kind: MissingInput}
	ErrLookupFailed    = &LookupError{Kind: LookupFailed}
	ErrUnknownTank     = &LookupError{Kind: UnknownTank}
)

func newLookupError(kind ErrorKind, format string, args ...interface{}) *LookupError {
	return &LookupError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a LookupError, or 0 for any other error
func KindOf(err error) ErrorKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
