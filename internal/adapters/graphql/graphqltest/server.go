// Package graphqltest provides an in-memory stand-in for the training
// GraphQL backend. It understands the Hasura-style operations the gateway
// sends, keeps the three training tables in memory and records every call so
// tests can assert which operations ran.
package graphqltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Top-level fields served by the fake.
const (
	FieldInsertEmployee = "insert_training_employee_one"
	FieldEmployees      = "training_employee"
	FieldInsertCourse   = "insert_training_course_one"
	FieldCourses        = "training_course"
	FieldInsertMapping  = "insert_training_employee_course_mapping_one"
)

type record map[string]any

// Call is one operation received by the server.
type Call struct {
	OperationName string
	Field         string
	Variables     map[string]any
	Header        http.Header
}

type failure struct {
	status  int
	message string
	raw     string
}

// Server is a fake backend. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	secretHeader string
	secret       string

	mu        sync.Mutex
	employees []record
	courses   []record
	mappings  []record
	calls     []Call
	failures  map[string]failure
}

// Option configures a Server.
type Option func(*Server)

// WithSecret makes the server reject requests whose header does not carry secret.
func WithSecret(header, secret string) Option {
	return func(s *Server) {
		s.secretHeader = header
		s.secret = secret
	}
}

// NewServer starts a fake backend. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{failures: map[string]failure{}}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SeedEmployee inserts an employee directly and returns its id.
func (s *Server) SeedEmployee(name, team string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEmployee(name, team)
}

// SeedCourse inserts a course directly and returns its id.
func (s *Server) SeedCourse(name string, durationDays int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCourse(name, durationDays)
}

// FailWithStatus makes every request for field answer with an HTTP status.
func (s *Server) FailWithStatus(field string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[field] = failure{status: status}
}

// FailWithError makes every request for field answer 200 with a GraphQL error.
func (s *Server) FailWithError(field, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[field] = failure{message: message}
}

// RespondRaw makes every request for field answer 200 with data[field] = raw.
func (s *Server) RespondRaw(field, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[field] = failure{raw: raw}
}

// Calls returns the operations received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many requests targeted field.
func (s *Server) CallCount(field string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Field == field {
			n++
		}
	}
	return n
}

// MappingCount returns the number of stored mappings.
func (s *Server) MappingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings)
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.secret != "" && r.Header.Get(s.secretHeader) != s.secret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, "invalid request body: "+err.Error(), "invalid-json")
		return
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil {
		writeErrors(w, err.Error(), "parse-failed")
		return
	}
	op := pickOperation(doc, req.OperationName)
	if op == nil || len(op.SelectionSet) != 1 {
		writeErrors(w, "expected exactly one operation with one root field", "validation-failed")
		return
	}
	field, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		writeErrors(w, "root selection must be a field", "validation-failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{
		OperationName: req.OperationName,
		Field:         field.Name,
		Variables:     req.Variables,
		Header:        r.Header.Clone(),
	})

	if f, ok := s.failures[field.Name]; ok {
		switch {
		case f.status != 0:
			http.Error(w, http.StatusText(f.status), f.status)
		case f.raw != "":
			writeJSON(w, map[string]any{"data": map[string]json.RawMessage{field.Alias: json.RawMessage(f.raw)}})
		default:
			writeErrors(w, f.message, "constraint-violation")
		}
		return
	}

	value, gerr := s.resolve(field, req.Variables)
	if gerr != nil {
		writeJSON(w, map[string]any{"errors": []gqlError{*gerr}})
		return
	}
	writeJSON(w, map[string]any{"data": map[string]any{field.Alias: value}})
}

func pickOperation(doc *ast.QueryDocument, name string) *ast.OperationDefinition {
	if name != "" {
		return doc.Operations.ForName(name)
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	return nil
}

// resolve runs field against the tables. Callers hold s.mu.
func (s *Server) resolve(field *ast.Field, vars map[string]any) (any, *gqlError) {
	args := map[string]any{}
	for _, arg := range field.Arguments {
		v, err := arg.Value.Value(vars)
		if err != nil {
			return nil, &gqlError{Message: err.Error(), Extensions: map[string]any{"code": "validation-failed"}}
		}
		args[arg.Name] = v
	}

	switch field.Name {
	case FieldInsertEmployee:
		obj, _ := args["object"].(map[string]any)
		name, okName := obj["name"].(string)
		team, okTeam := obj["team"].(string)
		if !okName || !okTeam {
			return nil, notNull("training_employee")
		}
		id := s.insertEmployee(name, team)
		return project(s.employees[id-1], field.SelectionSet), nil

	case FieldEmployees:
		return project(selectRows(s.employees, args), field.SelectionSet), nil

	case FieldInsertCourse:
		obj, _ := args["object"].(map[string]any)
		name, okName := obj["course_name"].(string)
		days, okDays := toInt(obj["duration_in_days"])
		if !okName || !okDays {
			return nil, notNull("training_course")
		}
		id := s.insertCourse(name, days)
		return project(s.courses[id-1], field.SelectionSet), nil

	case FieldCourses:
		return project(selectRows(s.courses, args), field.SelectionSet), nil

	case FieldInsertMapping:
		obj, _ := args["object"].(map[string]any)
		empID, okEmp := toInt(obj["employee_id"])
		courseID, okCourse := toInt(obj["course_id"])
		if !okEmp || !okCourse {
			return nil, notNull("training_employee_course_mapping")
		}
		if empID < 1 || empID > len(s.employees) {
			return nil, foreignKey("employee_id")
		}
		if courseID < 1 || courseID > len(s.courses) {
			return nil, foreignKey("course_id")
		}
		rec := record{"id": len(s.mappings) + 1, "employee_id": empID, "course_id": courseID}
		s.mappings = append(s.mappings, rec)
		return project(rec, field.SelectionSet), nil
	}

	return nil, &gqlError{
		Message:    fmt.Sprintf("field %q not found in type: 'query_root'", field.Name),
		Extensions: map[string]any{"code": "validation-failed"},
	}
}

func (s *Server) insertEmployee(name, team string) int {
	id := len(s.employees) + 1
	s.employees = append(s.employees, record{"id": id, "name": name, "team": team})
	return id
}

func (s *Server) insertCourse(name string, days int) int {
	id := len(s.courses) + 1
	s.courses = append(s.courses, record{"id": id, "course_name": name, "duration_in_days": days})
	return id
}

// selectRows applies where: {col: {_eq: v}} and limit: n.
func selectRows(rows []record, args map[string]any) []record {
	out := make([]record, 0, len(rows))
	where, _ := args["where"].(map[string]any)
	for _, row := range rows {
		if matches(row, where) {
			out = append(out, row)
		}
	}
	if limit, ok := toInt(args["limit"]); ok && limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func matches(row record, where map[string]any) bool {
	for col, cond := range where {
		ops, _ := cond.(map[string]any)
		if eq, ok := ops["_eq"]; ok && fmt.Sprint(row[col]) != fmt.Sprint(eq) {
			return false
		}
	}
	return true
}

// project keeps only the selected columns, like the real backend.
func project(v any, sel ast.SelectionSet) any {
	switch t := v.(type) {
	case []record:
		out := make([]map[string]any, 0, len(t))
		for _, row := range t {
			out = append(out, project(row, sel).(map[string]any))
		}
		return out
	case record:
		out := map[string]any{}
		for _, s := range sel {
			if f, ok := s.(*ast.Field); ok {
				out[f.Alias] = t[f.Name]
			}
		}
		return out
	}
	return v
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func notNull(table string) *gqlError {
	return &gqlError{
		Message:    fmt.Sprintf("Not-NULL violation. null value in column of relation %q", table),
		Extensions: map[string]any{"code": "constraint-violation"},
	}
}

func foreignKey(column string) *gqlError {
	return &gqlError{
		Message:    fmt.Sprintf("Foreign key violation. insert or update on table \"employee_course_mapping\" violates foreign key constraint on %q", column),
		Extensions: map[string]any{"code": "constraint-violation"},
	}
}

func writeErrors(w http.ResponseWriter, message, code string) {
	writeJSON(w, map[string]any{"errors": []gqlError{{Message: message, Extensions: map[string]any{"code": code}}}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
