// internal/app/features/learner/types.go
package learner

import "github.com/dalemusser/coursedeck/internal/domain/models"

// enrollmentView pairs an enrollment with the batch it belongs to and,
// when the batch references a course by ObjectID, the course itself.
type enrollmentView struct {
	models.Enrollment
	Batch  *models.Batch  `json:"batch,omitempty"`
	Course *models.Course `json:"course,omitempty"`
}

type catalogResponse struct {
	Courses []models.Course `json:"courses"`
	Total   int64           `json:"total"`
}
