// Package mcptools exposes the gateway operations as Model Context Protocol
// tools, so agent clients can manage training records through the same
// service the HTTP API uses.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okian/enroll/internal/adapters/graphql"
	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// Tool names.
const (
	ToolCreateEmployee       = "create_employee"
	ToolFindEmployee         = "find_employee"
	ToolCreateCourse         = "create_course"
	ToolListCourses          = "list_courses"
	ToolEnrollEmployee       = "enroll_employee"
	serverName               = "enroll"
	serverVersion            = "1.0.0"
	argName                  = "name"
	argTeam                  = "team"
	argCourseName            = "course_name"
	argDurationInDays        = "duration_in_days"
	backendFailureMessage    = "backend request failed"
	malformedResponseMessage = "unexpected backend response"
)

// Service is the operation set the tools call. *service.Service satisfies it.
type Service interface {
	CreateEmployee(ctx context.Context, in service.EmployeeInput) (model.Employee, error)
	FindEmployees(ctx context.Context, name string) ([]model.Employee, error)
	CreateCourse(ctx context.Context, in service.CourseInput) (model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	CreateEmployeeCourseMapping(ctx context.Context, in service.MappingInput) (model.EmployeeCourseMapping, error)
}

// Registration pairs an MCP tool definition with its handler function.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Tools returns the registrations for every gateway operation.
func Tools(svc Service, l logger.Logger) []Registration {
	if l == nil {
		l = logger.Nop()
	}
	t := toolset{svc: svc, logger: l}
	return []Registration{
		t.createEmployee(),
		t.findEmployee(),
		t.createCourse(),
		t.listCourses(),
		t.enrollEmployee(),
	}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(svc Service, l logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	for _, r := range Tools(svc, l) {
		s.AddTool(r.Tool, r.Handler)
	}
	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(svc Service, l logger.Logger) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(NewServer(svc, l))
}

type toolset struct {
	svc    Service
	logger logger.Logger
}

func (t toolset) createEmployee() Registration {
	tool := mcp.NewTool(ToolCreateEmployee,
		mcp.WithDescription("Create a training employee and return the stored record."),
		mcp.WithString(argName, mcp.Required(), mcp.Description("Employee name")),
		mcp.WithString(argTeam, mcp.Required(), mcp.Description("Team the employee belongs to")),
	)
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.finish(ctx, ToolCreateEmployee, time.Now(), func() (any, error) {
			args, err := requireStrings(req, argName, argTeam)
			if err != nil {
				return nil, err
			}
			return t.svc.CreateEmployee(ctx, service.EmployeeInput{Name: args[0], Team: args[1]})
		})
	}
	return Registration{Tool: tool, Handler: handler}
}

func (t toolset) findEmployee() Registration {
	tool := mcp.NewTool(ToolFindEmployee,
		mcp.WithDescription("Look up employees by exact name. An empty list means nobody matched."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString(argName, mcp.Required(), mcp.Description("Employee name")),
	)
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.finish(ctx, ToolFindEmployee, time.Now(), func() (any, error) {
			args, err := requireStrings(req, argName)
			if err != nil {
				return nil, err
			}
			emps, err := t.svc.FindEmployees(ctx, args[0])
			if emps == nil {
				emps = []model.Employee{}
			}
			return emps, err
		})
	}
	return Registration{Tool: tool, Handler: handler}
}

func (t toolset) createCourse() Registration {
	tool := mcp.NewTool(ToolCreateCourse,
		mcp.WithDescription("Create a training course and return the stored record."),
		mcp.WithString(argCourseName, mcp.Required(), mcp.Description("Course name")),
		mcp.WithNumber(argDurationInDays, mcp.Required(), mcp.Description("Course length in whole days")),
	)
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.finish(ctx, ToolCreateCourse, time.Now(), func() (any, error) {
			args, err := requireStrings(req, argCourseName)
			if err != nil {
				return nil, err
			}
			days, err := wholeNumber(req.GetArguments()[argDurationInDays])
			if err != nil {
				return nil, fmt.Errorf("%w: %s %v", service.ErrValidation, argDurationInDays, err)
			}
			return t.svc.CreateCourse(ctx, service.CourseInput{CourseName: args[0], DurationInDays: days})
		})
	}
	return Registration{Tool: tool, Handler: handler}
}

func (t toolset) listCourses() Registration {
	tool := mcp.NewTool(ToolListCourses,
		mcp.WithDescription("List every training course."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	handler := func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.finish(ctx, ToolListCourses, time.Now(), func() (any, error) {
			courses, err := t.svc.ListCourses(ctx)
			if courses == nil {
				courses = []model.Course{}
			}
			return courses, err
		})
	}
	return Registration{Tool: tool, Handler: handler}
}

func (t toolset) enrollEmployee() Registration {
	tool := mcp.NewTool(ToolEnrollEmployee,
		mcp.WithDescription("Enroll an employee in a course, both given by name. Fails without writing if either name is unknown."),
		mcp.WithString(argName, mcp.Required(), mcp.Description("Employee name")),
		mcp.WithString(argCourseName, mcp.Required(), mcp.Description("Course name")),
	)
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.finish(ctx, ToolEnrollEmployee, time.Now(), func() (any, error) {
			args, err := requireStrings(req, argName, argCourseName)
			if err != nil {
				return nil, err
			}
			return t.svc.CreateEmployeeCourseMapping(ctx, service.MappingInput{Name: args[0], CourseName: args[1]})
		})
	}
	return Registration{Tool: tool, Handler: handler}
}

// finish runs call and renders its outcome. Operation failures are tool
// errors visible to the model, never protocol errors.
func (t toolset) finish(ctx context.Context, name string, start time.Time, call func() (any, error)) (*mcp.CallToolResult, error) {
	v, err := call()
	if err != nil {
		t.logger.Debug(ctx, "tool call failed",
			logger.String("tool", name),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return mcp.NewToolResultError(errorMessage(err)), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error marshaling result: %v", err)), nil
	}
	t.logger.Debug(ctx, "tool call ok", logger.String("tool", name), logger.Duration("elapsed", time.Since(start)))
	return mcp.NewToolResultText(string(data)), nil
}

// errorMessage mirrors the HTTP API: the first backend message for
// application errors and generic messages for backend failures.
func errorMessage(err error) string {
	var appErr *graphql.ApplicationError
	var terr *graphql.TransportError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message()
	case errors.As(err, &terr):
		return backendFailureMessage
	case errors.Is(err, model.ErrMalformedRecord):
		return malformedResponseMessage
	}
	return err.Error()
}

// requireStrings returns the named string arguments in order. Absent or
// non-string arguments are validation errors; empty strings are passed on.
func requireStrings(req mcp.CallToolRequest, keys ...string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		v, err := req.RequireString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", service.ErrValidation, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// wholeNumber accepts JSON numbers without a fractional part.
func wholeNumber(v any) (int, error) {
	f, ok := v.(float64)
	switch {
	case v == nil:
		return 0, errors.New("is required")
	case !ok:
		return 0, errors.New("must be a number")
	case f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32:
		return 0, errors.New("must be an integer")
	}
	return int(f), nil
}
