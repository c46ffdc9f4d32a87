package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrValidation       = errors.New("invalid request")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrCourseNotFound   = errors.New("course not found")
)

// Stage is a state of the employee/course mapping flow.
type Stage string

// Mapping flow states, in order.
const (
	StageStart            Stage = "start"
	StageEmployeeResolved Stage = "employee_resolved"
	StageCourseResolved   Stage = "course_resolved"
	StageMappingCreated   Stage = "mapping_created"
)

// MappingError reports a mapping flow that stopped at Stage.
type MappingError struct {
	Stage Stage
	Err   error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("employee course mapping failed after %s: %v", e.Stage, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
