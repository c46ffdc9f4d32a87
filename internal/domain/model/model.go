// Package model contains the training records exchanged with the GraphQL
// backend and returned by the HTTP API.
package model

// Employee is a row of training_employee.
type Employee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}

// Course is a row of training_course. DurationInDays is always an integer,
// whatever representation the backend used.
type Course struct {
	ID             int    `json:"id"`
	CourseName     string `json:"course_name"`
	DurationInDays int    `json:"duration_in_days"`
}

// EmployeeCourseMapping links one Employee to one Course.
type EmployeeCourseMapping struct {
	ID         int `json:"id"`
	EmployeeID int `json:"employee_id"`
	CourseID   int `json:"course_id"`
}
