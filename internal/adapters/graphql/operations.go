package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/metrics"
)

// CreateEmployee inserts a training_employee row.
func (c *Client) CreateEmployee(ctx context.Context, name, team string) (model.Employee, error) {
	raw, err := c.run(ctx, opCreateEmployee, map[string]any{"name": name, "team": team})
	if err != nil {
		return model.Employee{}, err
	}
	return decodeRoot(opCreateEmployee, raw, model.DecodeEmployee)
}

// FindEmployeeByName returns at most one employee with the given name. An
// empty slice means no such employee.
func (c *Client) FindEmployeeByName(ctx context.Context, name string) ([]model.Employee, error) {
	raw, err := c.run(ctx, opFindEmployeeByName, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	return decodeRoot(opFindEmployeeByName, raw, model.DecodeEmployees)
}

// CreateCourse inserts a training_course row.
func (c *Client) CreateCourse(ctx context.Context, courseName string, durationDays int) (model.Course, error) {
	raw, err := c.run(ctx, opCreateCourse, map[string]any{
		"course_name":      courseName,
		"duration_in_days": durationDays,
	})
	if err != nil {
		return model.Course{}, err
	}
	return decodeRoot(opCreateCourse, raw, model.DecodeCourse)
}

// ListCourses returns every course.
func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	raw, err := c.run(ctx, opListCourses, nil)
	if err != nil {
		return nil, err
	}
	return decodeRoot(opListCourses, raw, model.DecodeCourses)
}

// FindCourseByName returns every course with the given name. Names are not
// unique, so callers decide what several matches mean.
func (c *Client) FindCourseByName(ctx context.Context, courseName string) ([]model.Course, error) {
	raw, err := c.run(ctx, opFindCourseByName, map[string]any{"course_name": courseName})
	if err != nil {
		return nil, err
	}
	return decodeRoot(opFindCourseByName, raw, model.DecodeCourses)
}

// CreateMapping inserts a training_employee_course_mapping row.
func (c *Client) CreateMapping(ctx context.Context, employeeID, courseID int) (model.EmployeeCourseMapping, error) {
	raw, err := c.run(ctx, opCreateMapping, map[string]any{
		"employee_id": employeeID,
		"course_id":   courseID,
	})
	if err != nil {
		return model.EmployeeCourseMapping{}, err
	}
	return decodeRoot(opCreateMapping, raw, model.DecodeMapping)
}

// run executes op and returns its data object, turning a reported errors
// array into an *ApplicationError.
func (c *Client) run(ctx context.Context, op operation, variables map[string]any) (json.RawMessage, error) {
	res, err := c.execute(ctx, op.name, op.document, variables)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// decodeRoot picks the operation's top-level field out of data and decodes it.
// It records the call's outcome as ok or malformed.
func decodeRoot[T any](op operation, data json.RawMessage, decode func([]byte) (T, error)) (T, error) {
	var zero T
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		metrics.RecordBackendRequest(op.name, metrics.OutcomeMalformed)
		return zero, fmt.Errorf("graphql %s: %w: data is not an object", op.name, model.ErrMalformedRecord)
	}
	raw, ok := fields[op.root]
	if !ok {
		metrics.RecordBackendRequest(op.name, metrics.OutcomeMalformed)
		return zero, fmt.Errorf("graphql %s: %w: data has no %q", op.name, model.ErrMalformedRecord, op.root)
	}
	out, err := decode(raw)
	if err != nil {
		metrics.RecordBackendRequest(op.name, metrics.OutcomeMalformed)
		return zero, fmt.Errorf("graphql %s: %w", op.name, err)
	}
	metrics.RecordBackendRequest(op.name, metrics.OutcomeOK)
	return out, nil
}
