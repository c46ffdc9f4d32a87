package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/enroll/internal/adapters/graphql"
	"github.com/okian/enroll/internal/adapters/graphql/graphqltest"
	"github.com/okian/enroll/internal/adapters/http/api"
	service "github.com/okian/enroll/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

const testSecret = "Welcome123"

// newGateway wires the real service over a fake backend.
func newGateway(backend *graphqltest.Server) (http.Handler, *service.Service) {
	client, err := graphql.New(graphql.Config{
		Endpoint:     backend.URL,
		SecretHeader: graphql.DefaultSecretHeader,
		Secret:       testSecret,
	})
	So(err, ShouldBeNil)
	svc := service.New(client)
	mux := http.NewServeMux()
	server := api.NewServer(svc, svc)
	server.Register(mux)
	mux.Handle("/", server.NotFoundHandler())
	return api.RequestIDMiddleware(mux), svc
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func message(w *httptest.ResponseRecorder) string {
	var body struct {
		Message string `json:"message"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body.Message
}

func TestEmployees(t *testing.T) {
	Convey("Given the gateway over an empty backend", t, func() {
		backend := graphqltest.NewServer(graphqltest.WithSecret(graphql.DefaultSecretHeader, testSecret))
		defer backend.Close()
		h, _ := newGateway(backend)

		Convey("When POST /employees carries a valid body", func() {
			w := do(h, http.MethodPost, "/employees", `{"name":"Alice","team":"Eng"}`)

			Convey("Then the created record is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(w.Body.String(), ShouldEqual, `{"id":1,"name":"Alice","team":"Eng"}`+"\n")
			})

			Convey("And GET /employee finds it by name", func() {
				w := do(h, http.MethodGet, "/employee?name=Alice", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `[{"id":1,"name":"Alice","team":"Eng"}]`+"\n")
			})
		})

		Convey("When GET /employee names nobody", func() {
			w := do(h, http.MethodGet, "/employee?name=Bob", "")

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When GET /employee has no name", func() {
			w := do(h, http.MethodGet, "/employee", "")

			Convey("Then it is a validation error and the backend is not called", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "missing name")
				So(backend.Calls(), ShouldBeEmpty)
			})
		})

		Convey("When the body omits team", func() {
			w := do(h, http.MethodPost, "/employees", `{"name":"Alice"}`)

			Convey("Then the response is 400 naming the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "missing team")
				So(backend.Calls(), ShouldBeEmpty)
			})
		})

		Convey("When name is present but blank", func() {
			w := do(h, http.MethodPost, "/employees", `{"name":" ","team":"Eng"}`)

			Convey("Then it is sent to the backend as given", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(backend.CallCount(graphqltest.FieldInsertEmployee), ShouldEqual, 1)
				So(backend.Calls()[0].Variables["name"], ShouldEqual, " ")
			})
		})

		Convey("When the body carries an unknown field", func() {
			w := do(h, http.MethodPost, "/employees", `{"name":"Alice","team":"Eng","role":"dev"}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, `unknown field "role"`)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(h, http.MethodPost, "/employees", `{"name":`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "not valid JSON")
			})
		})

		Convey("When the method is wrong", func() {
			w := do(h, http.MethodGet, "/employees", "")

			Convey("Then the response is 405 with a JSON message", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
				So(message(w), ShouldEqual, "method not allowed")
			})
		})

		Convey("When the backend rejects the insert", func() {
			backend.FailWithError(graphqltest.FieldInsertEmployee, "Uniqueness violation. duplicate key value")
			w := do(h, http.MethodPost, "/employees", `{"name":"Alice","team":"Eng"}`)

			Convey("Then the first backend message is surfaced with 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldEqual, "Uniqueness violation. duplicate key value")
			})
		})

		Convey("When the backend is down", func() {
			backend.FailWithStatus(graphqltest.FieldInsertEmployee, http.StatusServiceUnavailable)
			w := do(h, http.MethodPost, "/employees", `{"name":"Alice","team":"Eng"}`)

			Convey("Then the response is 502, not 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(message(w), ShouldEqual, "backend request failed")
			})
		})
	})
}

func TestCourses(t *testing.T) {
	Convey("Given the gateway over an empty backend", t, func() {
		backend := graphqltest.NewServer()
		defer backend.Close()
		h, _ := newGateway(backend)

		Convey("When no course exists", func() {
			w := do(h, http.MethodGet, "/courses", "")

			Convey("Then the list is empty", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When a course is created", func() {
			w := do(h, http.MethodPost, "/courses", `{"course_name":"Onboarding","duration_in_days":3}`)

			Convey("Then the duration comes back as an integer", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `{"id":1,"course_name":"Onboarding","duration_in_days":3}`+"\n")
			})

			Convey("And GET /courses lists it", func() {
				w := do(h, http.MethodGet, "/courses", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `[{"id":1,"course_name":"Onboarding","duration_in_days":3}]`+"\n")
			})
		})

		Convey("When the backend stores the duration as a string", func() {
			backend.RespondRaw(graphqltest.FieldCourses, `[{"id":4,"course_name":"Safety","duration_in_days":"5"}]`)
			w := do(h, http.MethodGet, "/courses", "")

			Convey("Then it is normalized to an integer", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `[{"id":4,"course_name":"Safety","duration_in_days":5}]`+"\n")
			})
		})

		Convey("When the backend returns a record without an id", func() {
			backend.RespondRaw(graphqltest.FieldCourses, `[{"course_name":"Safety","duration_in_days":5}]`)
			w := do(h, http.MethodGet, "/courses", "")

			Convey("Then the response is 502", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(message(w), ShouldEqual, "unexpected backend response")
			})
		})

		Convey("When duration_in_days is fractional", func() {
			w := do(h, http.MethodPost, "/courses", `{"course_name":"Onboarding","duration_in_days":2.5}`)

			Convey("Then it is rejected before the backend", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "duration_in_days must be an integer")
				So(backend.Calls(), ShouldBeEmpty)
			})
		})

		Convey("When duration_in_days is quoted", func() {
			w := do(h, http.MethodPost, "/courses", `{"course_name":"Onboarding","duration_in_days":"3"}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "duration_in_days must be an integer")
			})
		})

		Convey("When duration_in_days is zero", func() {
			w := do(h, http.MethodPost, "/courses", `{"course_name":"Onboarding","duration_in_days":0}`)

			Convey("Then the value is left to the backend", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `{"id":1,"course_name":"Onboarding","duration_in_days":0}`+"\n")
				So(backend.CallCount(graphqltest.FieldInsertCourse), ShouldEqual, 1)
			})
		})

		Convey("When the method is DELETE", func() {
			w := do(h, http.MethodDelete, "/courses", "")

			Convey("Then both supported methods are advertised", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, "GET, POST")
			})
		})
	})
}

func TestEmployeeCourseMapping(t *testing.T) {
	Convey("Given a backend with Alice and Onboarding", t, func() {
		backend := graphqltest.NewServer()
		defer backend.Close()
		backend.SeedEmployee("Alice", "Eng")
		backend.SeedCourse("Onboarding", 3)
		h, svc := newGateway(backend)

		Convey("When both names resolve", func() {
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Alice","course_name":"Onboarding"}`)

			Convey("Then the mapping links the resolved ids", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `{"id":1,"employee_id":1,"course_id":1}`+"\n")
				So(backend.MappingCount(), ShouldEqual, 1)
				So(svc.GetStats()["mappingsCreated"], ShouldEqual, int64(1))
			})
		})

		Convey("When the employee does not exist", func() {
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Ghost","course_name":"Onboarding"}`)

			Convey("Then no course lookup or write happens", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "employee not found")
				So(backend.CallCount(graphqltest.FieldCourses), ShouldEqual, 0)
				So(backend.CallCount(graphqltest.FieldInsertMapping), ShouldEqual, 0)
				So(backend.MappingCount(), ShouldEqual, 0)
			})
		})

		Convey("When the course does not exist", func() {
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Alice","course_name":"Welding"}`)

			Convey("Then no write happens", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "course not found")
				So(backend.CallCount(graphqltest.FieldInsertMapping), ShouldEqual, 0)
			})
		})

		Convey("When the insert hits a constraint", func() {
			backend.FailWithError(graphqltest.FieldInsertMapping, "Foreign key violation")
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Alice","course_name":"Onboarding"}`)

			Convey("Then the backend message is surfaced", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldEqual, "Foreign key violation")
			})
		})

		Convey("When the employee lookup fails in transport", func() {
			backend.FailWithStatus(graphqltest.FieldEmployees, http.StatusInternalServerError)
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Alice","course_name":"Onboarding"}`)

			Convey("Then the response is 502 and nothing else runs", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(backend.CallCount(graphqltest.FieldCourses), ShouldEqual, 0)
			})
		})

		Convey("When course_name is missing", func() {
			w := do(h, http.MethodPost, "/employeeCourseMapping", `{"name":"Alice"}`)

			Convey("Then it fails validation", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(message(w), ShouldContainSubstring, "missing course_name")
				So(backend.Calls(), ShouldBeEmpty)
			})
		})
	})
}

func TestAmbientRoutes(t *testing.T) {
	Convey("Given the gateway", t, func() {
		backend := graphqltest.NewServer()
		defer backend.Close()
		h, _ := newGateway(backend)

		Convey("When the caller sends an X-Request-ID", func() {
			req := httptest.NewRequest(http.MethodGet, "/courses", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
			})
		})

		Convey("When the caller sends none", func() {
			w := do(h, http.MethodGet, "/courses", "")

			Convey("Then one is generated", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
			})
		})

		Convey("When /stats is requested", func() {
			do(h, http.MethodGet, "/courses", "")
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then the service counters are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats map[string]float64
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["lookups"], ShouldEqual, 1)
			})
		})

		Convey("When /stats is posted to", func() {
			w := do(h, http.MethodPost, "/stats", "")

			Convey("Then it is 405 with Allow and a JSON message", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
				So(message(w), ShouldEqual, "method not allowed")
			})
		})

		Convey("When /healthz is requested", func() {
			do(h, http.MethodGet, "/courses", "")
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then the metrics exposition is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "enroll_gateway_http_requests_total")
			})
		})

		Convey("When an unknown path is requested", func() {
			w := do(h, http.MethodGet, "/nope", "")

			Convey("Then a JSON 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(message(w), ShouldEqual, "no such route")
			})
		})
	})
}
