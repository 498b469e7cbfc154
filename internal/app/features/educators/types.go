// internal/app/features/educators/types.go
package educators

import "github.com/dalemusser/coursedeck/internal/domain/models"

type decisionRequest struct {
	Notes string `json:"notes"`
}

type listResponse struct {
	Educators []models.OrgUser `json:"educators"`
	Total     int64            `json:"total"`
}

type uploadResult struct {
	Docs               []models.VerificationDoc `json:"docs"`
	VerificationStatus string                   `json:"verificationStatus"`
}

type detailResponse struct {
	Educator  models.OrgUser            `json:"educator"`
	Documents []models.EducatorDocument `json:"documents"`
}

type verificationView struct {
	Status string                   `json:"status"`
	Notes  string                   `json:"notes,omitempty"`
	Docs   []models.VerificationDoc `json:"docs"`
}

// profileRequest carries a partial educator profile update. Nil pointers
// and nil slices leave the stored value untouched.
type profileRequest struct {
	Title                *string  `json:"title"`
	Bio                  *string  `json:"bio"`
	HighestQualification *string  `json:"highestQualification"`
	YearsOfExperience    *int     `json:"yearsOfExperience"`
	ExpertiseAreas       []string `json:"expertiseAreas"`
	Languages            []string `json:"languages"`
	LinkedinURL          *string  `json:"linkedinUrl"`
	PortfolioURL         *string  `json:"portfolioUrl"`
}
