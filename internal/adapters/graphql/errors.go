package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by New for unusable client configuration.
var ErrInvalidConfig = errors.New("invalid graphql client config")

// TransportError means the backend call itself failed: the request could not
// be sent, the backend answered with a non-success HTTP status, or the body
// was not a GraphQL response. No part of the response is usable.
type TransportError struct {
	Operation  string
	StatusCode int // zero when no HTTP response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("graphql %s: backend returned HTTP %d", opLabel(e.Operation), e.StatusCode)
	}
	return fmt.Sprintf("graphql %s: %v", opLabel(e.Operation), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError carries the errors array of an otherwise successful
// backend response (constraint violations, bad references, ...).
type ApplicationError struct {
	Operation string
	Errors    []Error
}

// Message returns the first backend error message.
func (e *ApplicationError) Message() string {
	if len(e.Errors) == 0 {
		return "unknown backend error"
	}
	return e.Errors[0].Message
}

func (e *ApplicationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return fmt.Sprintf("graphql %s: %s", opLabel(e.Operation), strings.Join(msgs, "; "))
}

func opLabel(op string) string {
	if op == "" {
		return "anonymous"
	}
	return op
}
