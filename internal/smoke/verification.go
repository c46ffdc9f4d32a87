package smoke

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/okian/enroll/internal/domain/model"
	"github.com/okian/enroll/pkg/logger"
)

// verifier reads the dataset back through the gateway.
type verifier struct {
	client *httpClient
	data   *Dataset
	logger logger.Logger

	ok       atomic.Int64
	mismatch atomic.Int64
}

func newVerifier(client *httpClient, data *Dataset, l logger.Logger) *verifier {
	return &verifier{client: client, data: data, logger: l}
}

func (v *verifier) verified() int   { return int(v.ok.Load()) }
func (v *verifier) mismatches() int { return int(v.mismatch.Load()) }

func (v *verifier) check(ctx context.Context, what string, ok bool, fields ...logger.Field) {
	if ok {
		v.ok.Add(1)
		return
	}
	v.mismatch.Add(1)
	v.logger.Warn(ctx, "mismatch: "+what, fields...)
}

func (v *verifier) run(ctx context.Context, workers int) {
	// Every created employee is found by name with the same record.
	forEach(ctx, workers, len(v.data.Employees), func(ctx context.Context, i int) error {
		want := v.data.Employees[i]
		if want.ID == 0 {
			return nil
		}
		var got []model.Employee
		err := v.client.get(ctx, "/employee", url.Values{"name": {want.Name}}, &got)
		v.check(ctx, "employee lookup", err == nil && len(got) == 1 && got[0] == want,
			logger.String("name", want.Name), logger.Any("got", got), logger.Error(err))
		return err
	})

	// Every created course is listed with an integer duration.
	var listed []model.Course
	err := v.client.get(ctx, "/courses", nil, &listed)
	byID := make(map[int]model.Course, len(listed))
	for _, c := range listed {
		byID[c.ID] = c
	}
	for _, want := range v.data.Courses {
		if want.ID == 0 {
			continue
		}
		v.check(ctx, "course listing", err == nil && byID[want.ID] == want,
			logger.Int("id", want.ID), logger.Error(err))
	}

	// Each mapping links the ids the gateway returned at creation.
	for i, m := range v.data.Mappings {
		if m.ID == 0 {
			continue
		}
		course := v.data.Courses[i%len(v.data.Courses)]
		v.check(ctx, "mapping ids",
			m.EmployeeID == v.data.Employees[i].ID && m.CourseID == course.ID,
			logger.Int("mapping_id", m.ID))
	}

	// An unknown employee is refused without a write.
	var serr *StatusError
	err = v.client.post(ctx, "/employeeCourseMapping", map[string]string{
		"name":        "missing-" + uuid.NewString(),
		"course_name": v.data.Courses[0].CourseName,
	}, nil)
	v.check(ctx, "unknown employee rejected",
		errors.As(err, &serr) && serr.Status == http.StatusBadRequest,
		logger.Error(err))
}
