package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexInt accepts a JSON number or a numeric JSON string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type rawEmployee struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
	Team *string `json:"team"`
}

type rawCourse struct {
	ID             *int     `json:"id"`
	CourseName     *string  `json:"course_name"`
	DurationInDays *flexInt `json:"duration_in_days"`
}

type rawMapping struct {
	ID         *int `json:"id"`
	EmployeeID *int `json:"employee_id"`
	CourseID   *int `json:"course_id"`
}

// DecodeEmployee extracts an Employee from a backend record.
func DecodeEmployee(data []byte) (Employee, error) {
	var r rawEmployee
	if err := unmarshalRecord(data, "employee", &r); err != nil {
		return Employee{}, err
	}
	switch {
	case r.ID == nil:
		return Employee{}, missing("employee", "id")
	case r.Name == nil:
		return Employee{}, missing("employee", "name")
	case r.Team == nil:
		return Employee{}, missing("employee", "team")
	}
	return Employee{ID: *r.ID, Name: *r.Name, Team: *r.Team}, nil
}

// DecodeCourse extracts a Course from a backend record.
func DecodeCourse(data []byte) (Course, error) {
	var r rawCourse
	if err := unmarshalRecord(data, "course", &r); err != nil {
		return Course{}, err
	}
	switch {
	case r.ID == nil:
		return Course{}, missing("course", "id")
	case r.CourseName == nil:
		return Course{}, missing("course", "course_name")
	case r.DurationInDays == nil:
		return Course{}, missing("course", "duration_in_days")
	}
	return Course{ID: *r.ID, CourseName: *r.CourseName, DurationInDays: int(*r.DurationInDays)}, nil
}

// DecodeMapping extracts an EmployeeCourseMapping from a backend record.
func DecodeMapping(data []byte) (EmployeeCourseMapping, error) {
	var r rawMapping
	if err := unmarshalRecord(data, "employee course mapping", &r); err != nil {
		return EmployeeCourseMapping{}, err
	}
	switch {
	case r.ID == nil:
		return EmployeeCourseMapping{}, missing("employee course mapping", "id")
	case r.EmployeeID == nil:
		return EmployeeCourseMapping{}, missing("employee course mapping", "employee_id")
	case r.CourseID == nil:
		return EmployeeCourseMapping{}, missing("employee course mapping", "course_id")
	}
	return EmployeeCourseMapping{ID: *r.ID, EmployeeID: *r.EmployeeID, CourseID: *r.CourseID}, nil
}

// DecodeEmployees extracts a list of employees. The result is never nil.
func DecodeEmployees(data []byte) ([]Employee, error) {
	return decodeList(data, "employee", DecodeEmployee)
}

// DecodeCourses extracts a list of courses. The result is never nil.
func DecodeCourses(data []byte) ([]Course, error) {
	return decodeList(data, "course", DecodeCourse)
}

func decodeList[T any](data []byte, kind string, one func([]byte) (T, error)) ([]T, error) {
	if isNull(data) {
		return nil, fmt.Errorf("%w: %s list is null", ErrMalformedRecord, kind)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %s list: %w", ErrMalformedRecord, kind, err)
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		rec, err := one(raw)
		if err != nil {
			return nil, fmt.Errorf("%s list item %d: %w", kind, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func unmarshalRecord(data []byte, kind string, dst any) error {
	if isNull(data) {
		return fmt.Errorf("%w: %s is null", ErrMalformedRecord, kind)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedRecord, kind, err)
	}
	return nil
}

func missing(kind, field string) error {
	return fmt.Errorf("%w: %s is missing %q", ErrMalformedRecord, kind, field)
}

func isNull(data []byte) bool {
	t := bytes.TrimSpace(data)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
