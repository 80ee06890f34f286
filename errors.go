// File: strata/errors.go
package strata

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for conditions that carry no payload beyond their
// wrapping context. Match with errors.Is.
var (
	// ErrInvalidArgument reports malformed input to a chain operation
	// or an invalid profile name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSourceNotFound reports a named source missing from the chain
	// during a relative insert or replace.
	ErrSourceNotFound = errors.New("source not found")

	// ErrMissingKey reports a single required key that did not resolve.
	ErrMissingKey = errors.New("missing required key")

	// ErrConversion reports a failed type conversion. Converter
	// implementations wrap their underlying failure with it.
	ErrConversion = errors.New("conversion failed")
)

// MissingRequiredError aggregates every required key that failed to
// resolve during ValidateRequired. It is never raised for the first
// missing key alone.
type MissingRequiredError struct {
	Missing []string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("the following keys were declared as required but could not be resolved: [%s]",
		strings.Join(e.Missing, ", "))
}

// UnresolvedPlaceholderError reports a placeholder that has neither a
// value nor a default during strict resolution.
type UnresolvedPlaceholderError struct {
	// Key is the placeholder key that could not be resolved.
	Key string
	// Text is the enclosing text the placeholder appeared in.
	Text string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("could not resolve placeholder %q in value %q", e.Key, e.Text)
}

// CircularPlaceholderError reports a placeholder whose expansion
// refers back to itself, directly or through intermediate keys.
type CircularPlaceholderError struct {
	Key string
}

func (e *CircularPlaceholderError) Error() string {
	return fmt.Sprintf("circular placeholder reference %q in property definitions", e.Key)
}

// MalformedExpressionError reports a profile expression that violates
// the grammar, carrying the original text and the violated rule.
type MalformedExpressionError struct {
	Expression string
	Reason     string
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed profile expression %q: %s", e.Expression, e.Reason)
}

func malformed(expression, reason string) error {
	return &MalformedExpressionError{Expression: expression, Reason: reason}
}
