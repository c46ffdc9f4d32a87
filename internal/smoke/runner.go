package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrVerification reports that the gateway returned something other than
// what the run created.
var ErrVerification = errors.New("smoke verification failed")

// Run executes a complete smoke run against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config, l logger.Logger) (*Stats, error) {
	if cfg.Employees < 1 || cfg.Courses < 1 {
		return nil, fmt.Errorf("need at least one employee and one course, got %d and %d", cfg.Employees, cfg.Courses)
	}
	if l == nil {
		l = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	l.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("employees", cfg.Employees),
		logger.Int("courses", cfg.Courses),
		logger.Int("workers", cfg.Workers))

	if err := client.get(ctx, "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	tag := runTag()
	data := &Dataset{
		Employees: generateEmployees(tag, cfg.Employees),
		Courses:   generateCourses(tag, cfg.Courses),
	}

	// Step 1: create employees and courses
	stats.Failed += forEach(ctx, cfg.Workers, len(data.Employees), func(ctx context.Context, i int) error {
		want := data.Employees[i]
		return report(ctx, l, cfg, "create employee", client.post(ctx, "/employees",
			map[string]string{"name": want.Name, "team": want.Team}, &data.Employees[i]))
	})
	stats.Failed += forEach(ctx, cfg.Workers, len(data.Courses), func(ctx context.Context, i int) error {
		want := data.Courses[i]
		return report(ctx, l, cfg, "create course", client.post(ctx, "/courses",
			map[string]any{"course_name": want.CourseName, "duration_in_days": want.DurationInDays}, &data.Courses[i]))
	})
	stats.EmployeesCreated = countCreated(data.Employees, func(e model.Employee) int { return e.ID })
	stats.CoursesCreated = countCreated(data.Courses, func(c model.Course) int { return c.ID })

	// Step 2: enroll employee i in course i mod courses
	data.Mappings = make([]model.EmployeeCourseMapping, len(data.Employees))
	stats.Failed += forEach(ctx, cfg.Workers, len(data.Employees), func(ctx context.Context, i int) error {
		course := data.Courses[i%len(data.Courses)]
		return report(ctx, l, cfg, "enroll", client.post(ctx, "/employeeCourseMapping",
			map[string]string{"name": data.Employees[i].Name, "course_name": course.CourseName}, &data.Mappings[i]))
	})
	stats.MappingsCreated = countCreated(data.Mappings, func(m model.EmployeeCourseMapping) int { return m.ID })

	// Step 3: read everything back
	v := newVerifier(client, data, l)
	v.run(ctx, cfg.Workers)
	stats.Verified, stats.Mismatches = v.verified(), v.mismatches()

	if cfg.OutputFile != "" {
		if err := saveDataset(cfg.OutputFile, data); err != nil {
			l.Warn(ctx, "failed to save dataset", logger.Error(err))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	l.Info(ctx, "final statistics",
		logger.Int("employeesCreated", stats.EmployeesCreated),
		logger.Int("coursesCreated", stats.CoursesCreated),
		logger.Int("mappingsCreated", stats.MappingsCreated),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration))

	if stats.Failed > 0 || stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d failed requests, %d mismatches", ErrVerification, stats.Failed, stats.Mismatches)
	}
	return stats, nil
}

func report(ctx context.Context, l logger.Logger, cfg *Config, step string, err error) error {
	if err != nil && cfg.Verbose {
		l.Warn(ctx, "request failed", logger.String("step", step), logger.Error(err))
	}
	return err
}

func countCreated[T any](items []T, id func(T) int) int {
	n := 0
	for _, it := range items {
		if id(it) != 0 {
			n++
		}
	}
	return n
}

// saveDataset writes the created records as indented JSON.
func saveDataset(filename string, data *Dataset) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(filename, out, filePermission); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
