package model_test

import (
	"errors"
	"testing"

	"github.com/okian/enroll/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDecodeEmployee(t *testing.T) {
	convey.Convey("Given backend employee records", t, func() {
		convey.Convey("When every field is present", func() {
			emp, err := model.DecodeEmployee([]byte(`{"id":1,"name":"Alice","team":"Eng"}`))

			convey.Convey("Then the record is extracted field by field", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(emp, convey.ShouldResemble, model.Employee{ID: 1, Name: "Alice", Team: "Eng"})
			})
		})

		convey.Convey("When extra fields are present", func() {
			emp, err := model.DecodeEmployee([]byte(`{"id":2,"name":"Bob","team":"Ops","created_at":"2024-01-01"}`))

			convey.Convey("Then they are ignored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(emp.ID, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When team is missing", func() {
			_, err := model.DecodeEmployee([]byte(`{"id":1,"name":"Alice"}`))

			convey.Convey("Then a malformed record error names the field", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"team"`)
			})
		})

		convey.Convey("When the record is null", func() {
			_, err := model.DecodeEmployee([]byte(`null`))

			convey.Convey("Then it is malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When id has the wrong type", func() {
			_, err := model.DecodeEmployee([]byte(`{"id":"x","name":"Alice","team":"Eng"}`))

			convey.Convey("Then it is malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})
	})
}

func TestDecodeCourse(t *testing.T) {
	convey.Convey("Given backend course records", t, func() {
		convey.Convey("When duration_in_days is a number", func() {
			c, err := model.DecodeCourse([]byte(`{"id":3,"course_name":"Onboarding","duration_in_days":5}`))

			convey.Convey("Then it decodes as an integer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c, convey.ShouldResemble, model.Course{ID: 3, CourseName: "Onboarding", DurationInDays: 5})
			})
		})

		convey.Convey("When duration_in_days is a numeric string", func() {
			c, err := model.DecodeCourse([]byte(`{"id":3,"course_name":"Onboarding","duration_in_days":"7"}`))

			convey.Convey("Then it is normalized to an integer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.DurationInDays, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When duration_in_days is a non-numeric string", func() {
			_, err := model.DecodeCourse([]byte(`{"id":3,"course_name":"Onboarding","duration_in_days":"a week"}`))

			convey.Convey("Then it is malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When duration_in_days is null", func() {
			_, err := model.DecodeCourse([]byte(`{"id":3,"course_name":"Onboarding","duration_in_days":null}`))

			convey.Convey("Then it is reported missing", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "duration_in_days")
			})
		})
	})
}

func TestDecodeMapping(t *testing.T) {
	convey.Convey("Given a backend mapping record", t, func() {
		convey.Convey("When complete", func() {
			m, err := model.DecodeMapping([]byte(`{"id":1,"employee_id":1,"course_id":1}`))

			convey.Convey("Then both references are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m, convey.ShouldResemble, model.EmployeeCourseMapping{ID: 1, EmployeeID: 1, CourseID: 1})
			})
		})

		convey.Convey("When course_id is missing", func() {
			_, err := model.DecodeMapping([]byte(`{"id":1,"employee_id":1}`))

			convey.Convey("Then it is malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})
	})
}

func TestDecodeLists(t *testing.T) {
	convey.Convey("Given backend lists", t, func() {
		convey.Convey("When the employee list is empty", func() {
			emps, err := model.DecodeEmployees([]byte(`[]`))

			convey.Convey("Then an empty, non-nil slice is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(emps, convey.ShouldNotBeNil)
				convey.So(emps, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When a course list contains a bad item", func() {
			_, err := model.DecodeCourses([]byte(`[{"id":1,"course_name":"A","duration_in_days":1},{"id":2}]`))

			convey.Convey("Then the item index is reported", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "item 1")
			})
		})

		convey.Convey("When the list is not an array", func() {
			_, err := model.DecodeCourses([]byte(`{"id":1}`))

			convey.Convey("Then it is malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})
	})
}
