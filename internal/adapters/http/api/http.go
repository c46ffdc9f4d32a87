// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// maxBodyBytes caps inbound JSON payloads.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	CreateEmployee(ctx context.Context, in service.EmployeeInput) (model.Employee, error)
	FindEmployees(ctx context.Context, name string) ([]model.Employee, error)
	CreateCourse(ctx context.Context, in service.CourseInput) (model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	CreateEmployeeCourseMapping(ctx context.Context, in service.MappingInput) (model.EmployeeCourseMapping, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	employeesHandler *EmployeesHandler
	coursesHandler   *CoursesHandler
	mappingsHandler  *MappingsHandler
	logger           logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used to report failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider, s.logger)
	s.employeesHandler = NewEmployeesHandler(deps, s.logger)
	s.coursesHandler = NewCoursesHandler(deps, s.logger)
	s.mappingsHandler = NewMappingsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/employees", MetricsMiddleware(s.employeesHandler.HandlePostEmployee, "employees"))
	mux.HandleFunc("/employee", MetricsMiddleware(s.employeesHandler.HandleGetEmployee, "employee"))
	mux.HandleFunc("/courses", MetricsMiddleware(s.coursesHandler.HandleCourses, "courses"))
	mux.HandleFunc("/employeeCourseMapping", MetricsMiddleware(s.mappingsHandler.HandlePostMapping, "employee_course_mapping"))
}

// NotFoundHandler answers unknown paths with a JSON error body.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	rep := newResponder(s.logger)
	return func(w http.ResponseWriter, r *http.Request) {
		rep.fail(w, r, ErrRouteNotFound)
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// responder turns handler errors into responses and logs server-side failures.
type responder struct {
	logger logger.Logger
}

func newResponder(l logger.Logger) responder {
	if l == nil {
		l = logger.Nop()
	}
	return responder{logger: l}
}

func (rp responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", allowed(r.URL.Path))
	}
	if status >= http.StatusInternalServerError {
		rp.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	} else {
		rp.logger.Debug(r.Context(), "request rejected",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeError(w, status, msg)
}

func allowed(path string) string {
	switch path {
	case "/employee", "/stats":
		return http.MethodGet
	case "/courses":
		return http.MethodGet + ", " + http.MethodPost
	}
	return http.MethodPost
}

// decodeBody reads exactly one JSON object into dst. Unknown fields and
// mistyped values are validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("%s", describeDecodeError(err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is not valid JSON"
	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "request body must be a JSON object"
		}
		return typeErr.Field + " must be " + kindName(typeErr.Type)
	case errors.As(err, &sizeErr):
		return "request body too large"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	}
	return err.Error()
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "an integer"
	case reflect.String:
		return "a string"
	}
	return "a " + t.Kind().String()
}
