package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/enroll/internal/adapters/graphql"
	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRouteNotFound    = errors.New("no such route")
)

// badRequest reports a payload problem found before the service is called.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, fmt.Sprintf(format, args...))
}

// classify maps an error to the HTTP status and client-facing message.
// Backend application errors, validation failures and not-found lookups are
// the caller's problem (400); transport and record-shape failures are ours (502).
func classify(err error) (int, string) {
	var merr *service.MappingError
	if errors.As(err, &merr) {
		err = merr.Err
	}

	var appErr *graphql.ApplicationError
	var terr *graphql.TransportError
	switch {
	case errors.As(err, &appErr):
		return http.StatusBadRequest, appErr.Message()
	case errors.Is(err, service.ErrEmployeeNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &terr):
		return http.StatusBadGateway, "backend request failed"
	case errors.Is(err, model.ErrMalformedRecord):
		return http.StatusBadGateway, "unexpected backend response"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, ErrMethodNotAllowed.Error()
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, ErrRouteNotFound.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
