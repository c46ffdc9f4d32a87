package smoke

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/enroll/internal/domain/model"
)

// maxDurationDays bounds generated course lengths.
const maxDurationDays = 30

var teams = []string{"Eng", "Sales", "Ops", "Finance", "Support", "Design"}

// randomInt returns a value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// runTag makes names unique to one run so reruns against the same backend
// never collide on name lookups.
func runTag() string {
	return uuid.NewString()[:8]
}

func generateEmployees(tag string, n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := range out {
		out[i] = model.Employee{
			Name: "smoke-" + tag + "-" + uuid.NewString(),
			Team: teams[randomInt(len(teams))],
		}
	}
	return out
}

func generateCourses(tag string, n int) []model.Course {
	out := make([]model.Course, n)
	for i := range out {
		out[i] = model.Course{
			CourseName:     "course-" + tag + "-" + uuid.NewString(),
			DurationInDays: 1 + randomInt(maxDurationDays),
		}
	}
	return out
}
