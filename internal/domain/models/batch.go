package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Batch statuses. Enrollment is only open while a batch is published or
// ongoing.
const (
	BatchDraft     = "draft"
	BatchPublished = "published"
	BatchOngoing   = "ongoing"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
)

// Batch delivery modes.
const (
	BatchModeOnline  = "online"
	BatchModeOffline = "offline"
	BatchModeHybrid  = "hybrid"
)

// Batch is a scheduled cohort of a course (collection batches).
//
// CourseID is stored as the raw string the client supplied; historical data
// contains both hex ObjectIDs and free-form course codes, so it is not
// typed as an ObjectID.
type Batch struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	NameCI      string              `bson:"name_ci" json:"-"`
	Code        string              `bson:"code,omitempty" json:"code,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CourseID    string              `bson:"course_id" json:"courseId"`
	EducatorID  *primitive.ObjectID `bson:"educator_id,omitempty" json:"educatorId,omitempty"`
	SubOrgID    *primitive.ObjectID `bson:"sub_org_id,omitempty" json:"subOrgId,omitempty"`

	// Mode defaults to online.
	Mode string `bson:"mode" json:"mode"`

	Schedule BatchSchedule `bson:"schedule" json:"schedule"`

	// MaxLearners 0 means unlimited capacity.
	MaxLearners    int `bson:"max_learners" json:"maxLearners"`
	EnrolledCount  int `bson:"enrolled_count" json:"enrolledCount"`

	Status    string              `bson:"status" json:"status"`
	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// BatchSchedule describes when a batch runs.
type BatchSchedule struct {
	StartDate *time.Time `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Days      []string   `bson:"days,omitempty" json:"days,omitempty"`
	StartTime string     `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime   string     `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Timezone  string     `bson:"timezone,omitempty" json:"timezone,omitempty"`
}

// OpenForEnrollment reports whether the batch status permits new enrollments.
func (b Batch) OpenForEnrollment() bool {
	return b.Status == BatchPublished || b.Status == BatchOngoing
}

// HasCapacity reports whether another learner fits in the batch.
func (b Batch) HasCapacity() bool {
	return b.MaxLearners == 0 || b.EnrolledCount < b.MaxLearners
}
