package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson types.
const (
	LessonVideo = "video"
	LessonPDF   = "pdf"
	LessonText  = "text"
)

// Video sources for video lessons.
const (
	VideoSourceUpload     = "upload"
	VideoSourceYouTube    = "youtube"
	VideoSourceSharePoint = "sharepoint"
)

// CourseLesson is one ordered lesson inside a section (collection
// course_lessons). Like sections, Order is append-only.
//
// VideoSource discriminates where a video lesson's content lives: an
// upload stores the key in VideoUploadKey, external sources keep the
// address in VideoURL. Setting one side clears the other.
type CourseLesson struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"courseId"`
	SectionID primitive.ObjectID `bson:"section_id" json:"sectionId"`
	Title     string             `bson:"title" json:"title"`
	Type      string             `bson:"type" json:"type"`
	Order     int                `bson:"order" json:"order"`

	VideoSource     string `bson:"video_source,omitempty" json:"videoSource,omitempty"`
	VideoURL        string `bson:"video_url,omitempty" json:"videoUrl,omitempty"`
	VideoUploadKey  string `bson:"video_upload_key,omitempty" json:"videoUploadKey,omitempty"`
	DurationMinutes int    `bson:"duration_minutes,omitempty" json:"durationMinutes,omitempty"`

	TextContent string `bson:"text_content,omitempty" json:"textContent,omitempty"`

	ResourceURL string `bson:"resource_url,omitempty" json:"resourceUrl,omitempty"`

	IsPreview bool      `bson:"is_preview" json:"isPreview"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
