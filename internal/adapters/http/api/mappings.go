package api

import (
	"context"
	"net/http"

	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// MappingDependencies defines the interface for the mapping operation.
type MappingDependencies interface {
	CreateEmployeeCourseMapping(ctx context.Context, in service.MappingInput) (model.EmployeeCourseMapping, error)
}

// MappingsHandler handles employee/course mapping requests.
type MappingsHandler struct {
	deps MappingDependencies
	rep  responder
}

// NewMappingsHandler creates a new mappings handler.
func NewMappingsHandler(deps MappingDependencies, l logger.Logger) *MappingsHandler {
	return &MappingsHandler{deps: deps, rep: newResponder(l)}
}

// mappingRequest mirrors the body of POST /employeeCourseMapping.
type mappingRequest struct {
	Name       *string `json:"name"`
	CourseName *string `json:"course_name"`
}

func (m mappingRequest) input() (service.MappingInput, error) {
	switch {
	case m.Name == nil:
		return service.MappingInput{}, badRequest("missing name")
	case m.CourseName == nil:
		return service.MappingInput{}, badRequest("missing course_name")
	}
	return service.MappingInput{Name: *m.Name, CourseName: *m.CourseName}, nil
}

// HandlePostMapping handles POST /employeeCourseMapping requests.
func (h *MappingsHandler) HandlePostMapping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.rep.fail(w, r, ErrMethodNotAllowed)
		return
	}
	var req mappingRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.rep.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	mapping, err := h.deps.CreateEmployeeCourseMapping(r.Context(), in)
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}
