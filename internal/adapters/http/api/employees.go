package api

import (
	"context"
	"net/http"

	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// EmployeeDependencies defines the interface for employee operations.
type EmployeeDependencies interface {
	CreateEmployee(ctx context.Context, in service.EmployeeInput) (model.Employee, error)
	FindEmployees(ctx context.Context, name string) ([]model.Employee, error)
}

// EmployeesHandler handles employee requests.
type EmployeesHandler struct {
	deps EmployeeDependencies
	rep  responder
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeeDependencies, l logger.Logger) *EmployeesHandler {
	return &EmployeesHandler{deps: deps, rep: newResponder(l)}
}

// employeeRequest mirrors the body of POST /employees.
type employeeRequest struct {
	Name *string `json:"name"`
	Team *string `json:"team"`
}

func (e employeeRequest) input() (service.EmployeeInput, error) {
	switch {
	case e.Name == nil:
		return service.EmployeeInput{}, badRequest("missing name")
	case e.Team == nil:
		return service.EmployeeInput{}, badRequest("missing team")
	}
	return service.EmployeeInput{Name: *e.Name, Team: *e.Team}, nil
}

// HandlePostEmployee handles POST /employees requests.
func (h *EmployeesHandler) HandlePostEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.rep.fail(w, r, ErrMethodNotAllowed)
		return
	}
	var req employeeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.rep.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	emp, err := h.deps.CreateEmployee(r.Context(), in)
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// HandleGetEmployee handles GET /employee?name= requests. No match is an
// empty array, not an error.
func (h *EmployeesHandler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.rep.fail(w, r, ErrMethodNotAllowed)
		return
	}
	emps, err := h.deps.FindEmployees(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.rep.fail(w, r, err)
		return
	}
	if emps == nil {
		emps = []model.Employee{}
	}
	writeJSON(w, http.StatusOK, emps)
}
