// Command smoke seeds a running gateway with employees and courses, enrolls
// them and verifies the results read back through the API.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/enroll/internal/smoke"
	"github.com/okian/enroll/pkg/logger"
)

// Default configuration constants.
const (
	defaultEmployees   = 100
	defaultCourses     = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the gateway")
		employees  = flag.Int("employees", defaultEmployees, "Number of employees to create")
		courses    = flag.Int("courses", defaultCourses, "Number of courses to create")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the created records to this JSON file")
		logFormat  = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every failed request")
	)
	flag.Parse()

	if err := logger.InitWith(os.Stdout, *logFormat); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL:    *baseURL,
		Employees:  *employees,
		Courses:    *courses,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := smoke.Run(ctx, cfg, logger.Named("smoke")); err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
