package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment statuses. A learner may hold at most one pending or confirmed
// enrollment per batch; cancelled and completed records do not block
// re-enrollment.
const (
	EnrollmentPending   = "pending"
	EnrollmentConfirmed = "confirmed"
	EnrollmentCancelled = "cancelled"
	EnrollmentCompleted = "completed"
)

// Enrollment sources record who or what created the enrollment.
const (
	EnrollmentSourceAdmin      = "admin"
	EnrollmentSourceSelf       = "self"
	EnrollmentSourceAccessCode = "access_code"
	EnrollmentSourceImport     = "import"
)

// Enrollment links a learner to a batch (collection enrollments).
type Enrollment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BatchID   primitive.ObjectID  `bson:"batch_id" json:"batchId"`
	LearnerID primitive.ObjectID  `bson:"learner_id" json:"learnerId"`
	SubOrgID  *primitive.ObjectID `bson:"sub_org_id,omitempty" json:"subOrgId,omitempty"`
	Status    string              `bson:"status" json:"status"`
	Source    string              `bson:"source" json:"source"`

	StartDate  *time.Time `bson:"start_date,omitempty" json:"startDate,omitempty"`
	ExpiryDate *time.Time `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	Notes      string     `bson:"notes,omitempty" json:"notes,omitempty"`

	EnrolledBy *primitive.ObjectID `bson:"enrolled_by,omitempty" json:"enrolledBy,omitempty"`
	EnrolledAt time.Time           `bson:"enrolled_at" json:"enrolledAt"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Active reports whether the enrollment currently occupies a seat.
func (e Enrollment) Active() bool {
	return e.Status == EnrollmentPending || e.Status == EnrollmentConfirmed
}
