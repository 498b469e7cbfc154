// internal/app/features/batches/types.go
package batches

import (
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
)

type batchRequest struct {
	Name        string                `json:"name"`
	Code        string                `json:"code"`
	Description string                `json:"description"`
	CourseID    string                `json:"courseId"`
	EducatorID  string                `json:"educatorId"`
	SubOrgID    string                `json:"subOrgId"`
	Mode        string                `json:"mode"`
	Schedule    *models.BatchSchedule `json:"schedule"`
	MaxLearners *int                  `json:"maxLearners"`
	Status      string                `json:"status"`
}

// enrollTerms are the optional enrollment fields staff may set.
type enrollTerms struct {
	StartDate  *time.Time `json:"startDate"`
	ExpiryDate *time.Time `json:"expiryDate"`
	Notes      string     `json:"notes"`
}

type enrollRequest struct {
	LearnerID string `json:"learnerId"`
	enrollTerms
}

type bulkEnrollRequest struct {
	LearnerIDs []string `json:"learnerIds"`
	enrollTerms
}

// bulkEnrollResult is the per-learner outcome of a bulk enrollment. The
// whole request succeeds even when individual learners fail.
type bulkEnrollResult struct {
	LearnerID    string `json:"learnerId"`
	Status       string `json:"status"`
	EnrollmentID string `json:"enrollmentId,omitempty"`
	Message      string `json:"message,omitempty"`
}

// bulkEnrollResponse summarizes a bulk enrollment call.
type bulkEnrollResponse struct {
	BatchID      string             `json:"batchId"`
	Total        int                `json:"total"`
	SuccessCount int                `json:"successCount"`
	FailureCount int                `json:"failureCount"`
	Results      []bulkEnrollResult `json:"results"`
}

type listResponse struct {
	Batches []models.Batch `json:"batches"`
	Total   int64          `json:"total"`
}
