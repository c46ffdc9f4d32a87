// Package service implements the gateway operations on top of the GraphQL
// backend client. Every call is independent; nothing is cached between
// requests.
package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
	"github.com/okian/enroll/pkg/metrics"
)

// Backend is the subset of the GraphQL client the service needs.
type Backend interface {
	CreateEmployee(ctx context.Context, name, team string) (model.Employee, error)
	FindEmployeeByName(ctx context.Context, name string) ([]model.Employee, error)
	CreateCourse(ctx context.Context, courseName string, durationDays int) (model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	FindCourseByName(ctx context.Context, courseName string) ([]model.Course, error)
	CreateMapping(ctx context.Context, employeeID, courseID int) (model.EmployeeCourseMapping, error)
}

// counters are monitoring totals only; no request reads them.
type counters struct {
	employeesCreated atomic.Int64
	coursesCreated   atomic.Int64
	mappingsCreated  atomic.Int64
	lookups          atomic.Int64
	notFound         atomic.Int64
	failures         atomic.Int64
}

// Service implements the API dependencies for the gateway.
type Service struct {
	backend Backend
	logger  logger.Logger
	stats   counters
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service on top of backend.
func New(backend Backend, opts ...Option) *Service {
	if backend == nil {
		panic("service: backend is nil")
	}
	s := &Service{
		backend: backend,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployee creates the employee described by in.
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (model.Employee, error) {
	emp, err := s.backend.CreateEmployee(ctx, in.Name, in.Team)
	if err != nil {
		s.stats.failures.Add(1)
		return model.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	s.stats.employeesCreated.Add(1)
	s.logger.Info(ctx, "employee created", logger.Int("id", emp.ID), logger.String("team", emp.Team))
	return emp, nil
}

// FindEmployees returns the employees named name. An empty result is not an
// error; an empty name is.
func (s *Service) FindEmployees(ctx context.Context, name string) ([]model.Employee, error) {
	if name == "" {
		return nil, invalid("missing name")
	}
	s.stats.lookups.Add(1)
	emps, err := s.backend.FindEmployeeByName(ctx, name)
	if err != nil {
		s.stats.failures.Add(1)
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return emps, nil
}

// CreateCourse creates the course described by in.
func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (model.Course, error) {
	course, err := s.backend.CreateCourse(ctx, in.CourseName, in.DurationInDays)
	if err != nil {
		s.stats.failures.Add(1)
		return model.Course{}, fmt.Errorf("create course: %w", err)
	}
	s.stats.coursesCreated.Add(1)
	s.logger.Info(ctx, "course created", logger.Int("id", course.ID), logger.Int("duration_in_days", course.DurationInDays))
	return course, nil
}

// ListCourses returns every course.
func (s *Service) ListCourses(ctx context.Context) ([]model.Course, error) {
	s.stats.lookups.Add(1)
	courses, err := s.backend.ListCourses(ctx)
	if err != nil {
		s.stats.failures.Add(1)
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// CreateEmployeeCourseMapping resolves the employee, then the course, then
// creates the mapping. Each step runs only if the previous one succeeded;
// a failure is returned as *MappingError naming the last state reached.
func (s *Service) CreateEmployeeCourseMapping(ctx context.Context, in MappingInput) (model.EmployeeCourseMapping, error) {
	stage := StageStart
	fail := func(err error) (model.EmployeeCourseMapping, error) {
		s.stats.failures.Add(1)
		metrics.RecordMappingOutcome(string(stage), "failure")
		s.logger.Debug(ctx, "mapping aborted", logger.String("stage", string(stage)), logger.Error(err))
		return model.EmployeeCourseMapping{}, &MappingError{Stage: stage, Err: err}
	}

	emps, err := s.backend.FindEmployeeByName(ctx, in.Name)
	if err != nil {
		return fail(fmt.Errorf("resolve employee: %w", err))
	}
	if len(emps) == 0 {
		s.stats.notFound.Add(1)
		return fail(fmt.Errorf("%w: %q", ErrEmployeeNotFound, in.Name))
	}
	employee := emps[0]
	stage = StageEmployeeResolved

	courses, err := s.backend.FindCourseByName(ctx, in.CourseName)
	if err != nil {
		return fail(fmt.Errorf("resolve course: %w", err))
	}
	if len(courses) == 0 {
		s.stats.notFound.Add(1)
		return fail(fmt.Errorf("%w: %q", ErrCourseNotFound, in.CourseName))
	}
	if len(courses) > 1 {
		s.logger.Warn(ctx, "course name is ambiguous; using first match",
			logger.String("course_name", in.CourseName),
			logger.Int("matches", len(courses)),
			logger.Int("course_id", courses[0].ID))
	}
	course := courses[0]
	stage = StageCourseResolved

	mapping, err := s.backend.CreateMapping(ctx, employee.ID, course.ID)
	if err != nil {
		return fail(fmt.Errorf("create mapping: %w", err))
	}
	stage = StageMappingCreated

	s.stats.mappingsCreated.Add(1)
	metrics.RecordMappingOutcome(string(stage), "success")
	s.logger.Info(ctx, "employee mapped to course",
		logger.Int("id", mapping.ID),
		logger.Int("employee_id", mapping.EmployeeID),
		logger.Int("course_id", mapping.CourseID))
	return mapping, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"employeesCreated": s.stats.employeesCreated.Load(),
		"coursesCreated":   s.stats.coursesCreated.Load(),
		"mappingsCreated":  s.stats.mappingsCreated.Load(),
		"lookups":          s.stats.lookups.Load(),
		"notFound":         s.stats.notFound.Load(),
		"failures":         s.stats.failures.Load(),
	}
}
