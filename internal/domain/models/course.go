package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course lifecycle statuses.
const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

// Course is a tenant course (collection courses). Curriculum lives in the
// course_sections and course_lessons collections, referenced by CourseID.
type Course struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title"`
	TitleCI      string              `bson:"title_ci" json:"-"`
	Slug         string              `bson:"slug,omitempty" json:"slug,omitempty"`
	Subtitle     string              `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Category     string              `bson:"category,omitempty" json:"category,omitempty"`
	Subcategory  string              `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Language     string              `bson:"language,omitempty" json:"language,omitempty"`
	Level        string              `bson:"level,omitempty" json:"level,omitempty"`
	ThumbnailURL string              `bson:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`
	PromoVideoURL string             `bson:"promo_video_url,omitempty" json:"promoVideoUrl,omitempty"`
	Tags         []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Outcomes     []string            `bson:"outcomes,omitempty" json:"outcomes,omitempty"`
	Requirements []string            `bson:"requirements,omitempty" json:"requirements,omitempty"`
	EducatorID   *primitive.ObjectID `bson:"educator_id,omitempty" json:"educatorId,omitempty"`
	SubOrgID     *primitive.ObjectID `bson:"sub_org_id,omitempty" json:"subOrgId,omitempty"`

	Pricing CoursePricing `bson:"pricing" json:"pricing"`
	SEO     CourseSEO     `bson:"seo,omitempty" json:"seo,omitempty"`

	// draft | published | archived
	Status      string     `bson:"status" json:"status"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"publishedAt,omitempty"`

	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// CoursePricing is the normalized pricing block. IsFree forces Price to 0.
type CoursePricing struct {
	IsFree             bool    `bson:"is_free" json:"isFree"`
	Price              float64 `bson:"price" json:"price"`
	Currency           string  `bson:"currency,omitempty" json:"currency,omitempty"`
	DiscountPercentage float64 `bson:"discount_percentage,omitempty" json:"discountPercentage,omitempty"`
}

// CourseSEO carries search listing metadata for the course page.
type CourseSEO struct {
	MetaTitle       string   `bson:"meta_title,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string   `bson:"meta_description,omitempty" json:"metaDescription,omitempty"`
	Keywords        []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
}
