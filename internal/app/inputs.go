package service

// EmployeeInput is the argument record for CreateEmployee. Values are passed
// to the backend as given; the backend owns their constraints.
type EmployeeInput struct {
	Name string
	Team string
}

// CourseInput is the argument record for CreateCourse.
type CourseInput struct {
	CourseName     string
	DurationInDays int
}

// MappingInput is the argument record for CreateEmployeeCourseMapping.
type MappingInput struct {
	Name       string
	CourseName string
}
