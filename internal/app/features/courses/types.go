// internal/app/features/courses/types.go
package courses

import "github.com/dalemusser/coursedeck/internal/domain/models"

// pricingRequest accepts both the nested pricing block and the legacy
// top-level fields older clients still send. The nested block wins when
// both are present.
type pricingRequest struct {
	IsFree             *bool    `json:"isFree"`
	Price              *float64 `json:"price"`
	Currency           string   `json:"currency"`
	DiscountPercentage *float64 `json:"discountPercentage"`
}

type courseRequest struct {
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	Subtitle      string           `json:"subtitle"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory"`
	Language      string           `json:"language"`
	Level         string           `json:"level"`
	ThumbnailURL  string           `json:"thumbnailUrl"`
	PromoVideoURL string           `json:"promoVideoUrl"`
	Tags          []string         `json:"tags"`
	Outcomes      []string         `json:"outcomes"`
	Requirements  []string         `json:"requirements"`
	EducatorID    string           `json:"educatorId"`
	SubOrgID      string           `json:"subOrgId"`
	SEO           *models.CourseSEO `json:"seo"`

	Pricing *pricingRequest `json:"pricing"`

	// Legacy flat pricing fields.
	IsFree             *bool    `json:"isFree"`
	Price              *float64 `json:"price"`
	Currency           string   `json:"currency"`
	DiscountPercentage *float64 `json:"discountPercentage"`
}

type sectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type lessonRequest struct {
	Title           string `json:"title"`
	Type            string `json:"type"`
	VideoSource     string `json:"videoSource"`
	VideoURL        string `json:"videoUrl"`
	VideoUploadKey  string `json:"videoUploadKey"`
	DurationMinutes *int   `json:"durationMinutes"`
	TextContent     string `json:"textContent"`
	ResourceURL     string `json:"resourceUrl"`
	IsPreview       *bool  `json:"isPreview"`
}

type listResponse struct {
	Courses []models.Course `json:"courses"`
	Total   int64           `json:"total"`
}

// sectionView is a section with its lessons inlined for curriculum reads.
type sectionView struct {
	models.CourseSection
	Lessons []models.CourseLesson `json:"lessons"`
}
