package model

import "errors"

// ErrMalformedRecord reports a backend payload that does not have the shape
// of the record it should contain.
var ErrMalformedRecord = errors.New("malformed backend record")
