package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const (
	createEmployeeDocument = `
mutation insert_training_employee_one($name: String!, $team: String!) {
  insert_training_employee_one(object: {name: $name, team: $team}) {
    id
    name
    team
  }
}`

	findEmployeeByNameDocument = `
query get_employee_by_name($name: String) {
  training_employee(where: {name: {_eq: $name}}, limit: 1) {
    id
    name
    team
  }
}`

	createCourseDocument = `
mutation insert_training_course_one($course_name: String!, $duration_in_days: Int!) {
  insert_training_course_one(object: {course_name: $course_name, duration_in_days: $duration_in_days}) {
    id
    course_name
    duration_in_days
  }
}`

	listCoursesDocument = `
query get_course {
  training_course {
    id
    course_name
    duration_in_days
  }
}`

	findCourseByNameDocument = `
query get_course_by_name($course_name: String = "") {
  training_course(where: {course_name: {_eq: $course_name}}) {
    id
    course_name
    duration_in_days
  }
}`

	createMappingDocument = `
mutation create_employee_course_mapping($employee_id: Int!, $course_id: Int!) {
  insert_training_employee_course_mapping_one(object: {employee_id: $employee_id, course_id: $course_id}) {
    id
    employee_id
    course_id
  }
}`
)

// operation is a fixed document together with the names parsed from it.
type operation struct {
	name     string // operationName sent to the backend
	root     string // response key of the single top-level field
	document string
}

var (
	opCreateEmployee     = mustOperation(createEmployeeDocument)
	opFindEmployeeByName = mustOperation(findEmployeeByNameDocument)
	opCreateCourse       = mustOperation(createCourseDocument)
	opListCourses        = mustOperation(listCoursesDocument)
	opFindCourseByName   = mustOperation(findCourseByNameDocument)
	opCreateMapping      = mustOperation(createMappingDocument)
)

// mustOperation parses document and panics if it is not exactly one named
// operation selecting exactly one top-level field.
func mustOperation(document string) operation {
	doc, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: document})
	if err != nil {
		panic(fmt.Sprintf("graphql: parse document: %v", err))
	}
	if len(doc.Operations) != 1 {
		panic(fmt.Sprintf("graphql: want 1 operation, got %d", len(doc.Operations)))
	}
	def := doc.Operations[0]
	if def.Name == "" || len(def.SelectionSet) != 1 {
		panic(fmt.Sprintf("graphql: operation %q must be named and select one field", def.Name))
	}
	field, ok := def.SelectionSet[0].(*ast.Field)
	if !ok {
		panic(fmt.Sprintf("graphql: operation %q must select a field", def.Name))
	}
	return operation{name: def.Name, root: field.Alias, document: document}
}
