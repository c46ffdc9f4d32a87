package api

import (
	"context"
	"net/http"

	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// CourseDependencies defines the interface for course operations.
type CourseDependencies interface {
	CreateCourse(ctx context.Context, in service.CourseInput) (model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
}

// CoursesHandler handles course requests.
type CoursesHandler struct {
	deps CourseDependencies
	rep  responder
}

// NewCoursesHandler creates a new courses handler.
func NewCoursesHandler(deps CourseDependencies, l logger.Logger) *CoursesHandler {
	return &CoursesHandler{deps: deps, rep: newResponder(l)}
}

// courseRequest mirrors the body of POST /courses. A fractional or quoted
// duration is rejected by the decoder.
type courseRequest struct {
	CourseName     *string `json:"course_name"`
	DurationInDays *int    `json:"duration_in_days"`
}

func (c courseRequest) input() (service.CourseInput, error) {
	switch {
	case c.CourseName == nil:
		return service.CourseInput{}, badRequest("missing course_name")
	case c.DurationInDays == nil:
		return service.CourseInput{}, badRequest("missing duration_in_days")
	}
	return service.CourseInput{CourseName: *c.CourseName, DurationInDays: *c.DurationInDays}, nil
}

// HandleCourses dispatches /courses by method.
func (h *CoursesHandler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleListCourses(w, r)
	case http.MethodPost:
		h.HandlePostCourse(w, r)
	default:
		h.rep.fail(w, r, ErrMethodNotAllowed)
	}
}

// HandlePostCourse handles POST /courses requests.
func (h *CoursesHandler) HandlePostCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.rep.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	course, err := h.deps.CreateCourse(r.Context(), in)
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// HandleListCourses handles GET /courses requests.
func (h *CoursesHandler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.deps.ListCourses(r.Context())
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}
