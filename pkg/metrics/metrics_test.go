package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the gateway collectors are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.backendRequests.WithLabelValues("get_course", OutcomeOK).Inc()
				count, err := testutil.GatherAndCount(registry, "enroll_gateway_backend_requests_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("facade"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.httpRequests.WithLabelValues("employees", "POST", "200").Inc()

			Convey("Then names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, mf := range families {
					if mf.GetName() != "test_facade_http_requests_total" {
						continue
					}
					found = true
					labels := mf.GetMetric()[0].GetLabel()
					var env string
					for _, l := range labels {
						if l.GetName() == "env" {
							env = l.GetValue()
						}
					}
					So(env, ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording backend operations", func() {
			before := testutil.ToFloat64(globalManager.backendRequests.WithLabelValues("insert_training_employee_one", OutcomeApplicationError))
			RecordBackendRequest("insert_training_employee_one", OutcomeApplicationError)
			RecordBackendRequest("insert_training_employee_one", OutcomeApplicationError)

			Convey("Then the counter advances per call", func() {
				after := testutil.ToFloat64(globalManager.backendRequests.WithLabelValues("insert_training_employee_one", OutcomeApplicationError))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording mapping outcomes", func() {
			before := testutil.ToFloat64(globalManager.mappingOutcomes.WithLabelValues("start", "failure"))
			RecordMappingOutcome("start", "failure")

			Convey("Then the stage/result series advances", func() {
				So(testutil.ToFloat64(globalManager.mappingOutcomes.WithLabelValues("start", "failure"))-before, ShouldEqual, 1)
			})
		})

		Convey("When recording latency, HTTP and system metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordBackendLatency("get_course", 12.5)
					RecordHTTPRequest("courses", "GET", "200")
					RecordHTTPRequestDuration("courses", "GET", "200", 3)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("employees", "POST", "client_error")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When asking for the registry", func() {
			Convey("Then the custom registry is returned", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
