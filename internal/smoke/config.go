// Package smoke drives a running gateway end to end: it creates employees
// and courses, enrolls every employee in a course and reads everything back
// to check the gateway and its backend agree.
package smoke

import (
	"time"

	"github.com/okian/enroll/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the gateway
	Employees  int           // Number of employees to create
	Courses    int           // Number of courses to create
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where to save the created records; empty skips saving
	Verbose    bool          // Log every failed request
}

// Dataset is everything a run created.
type Dataset struct {
	Employees []model.Employee              `json:"employees"`
	Courses   []model.Course                `json:"courses"`
	Mappings  []model.EmployeeCourseMapping `json:"mappings"`
}

// Stats holds run statistics.
type Stats struct {
	EmployeesCreated int
	CoursesCreated   int
	MappingsCreated  int
	Failed           int
	Verified         int
	Mismatches       int
	StartTime        time.Time
	Duration         time.Duration
}
