package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseSection is one ordered section of a course's curriculum
// (collection course_sections). Order is assigned at creation as the
// current section count plus one and is never renumbered afterwards, so
// gaps may appear after deletions.
type CourseSection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID    primitive.ObjectID `bson:"course_id" json:"courseId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Order       int                `bson:"order" json:"order"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
