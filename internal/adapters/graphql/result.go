package graphql

import (
	"encoding/json"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error is one entry of a GraphQL errors array.
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code, which Hasura uses to classify errors
// (e.g. "constraint-violation").
func (e Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Result is the decoded {data, errors} body of a backend response. Callers
// must check Errors (or Err) before trusting Data.
type Result struct {
	Operation string
	Data      json.RawMessage
	Errors    []Error
}

// Err returns an *ApplicationError when the backend reported errors.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &ApplicationError{Operation: r.Operation, Errors: r.Errors}
}

func convertErrors(list gqlerror.List) []Error {
	if len(list) == 0 {
		return nil
	}
	out := make([]Error, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		out = append(out, Error{Message: e.Message, Extensions: e.Extensions})
	}
	return out
}
