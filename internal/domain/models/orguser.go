package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification statuses for educators. The zero value (empty string) means
// the user has no verification record at all, which is how non-educators and
// freshly created educators start out.
const (
	VerificationPending    = "pending"
	VerificationApproved   = "approved"
	VerificationRejected   = "rejected"
	VerificationUnverified = "unverified"
)

// OrgUser represents every person inside one tenant database: admins,
// sub-org admins, educators, and learners (collection org_users).
//
// NOTE:
//   - SubOrgID must reference a SubOrg in the same tenant database or be nil.
//   - The verification block and EducatorProfile are only meaningful for
//     educators; they stay zero-valued for everyone else.
type OrgUser struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	NameCI       string              `bson:"name_ci" json:"-"`
	Email        string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"`
	Role         string              `bson:"role" json:"role"`
	SubOrgID     *primitive.ObjectID `bson:"sub_org_id,omitempty" json:"subOrgId,omitempty"`

	// active | inactive | blocked
	Status      string     `bson:"status" json:"status"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`

	// Educator verification. Uploading documents moves an unverified
	// educator to "pending"; an admin decision moves them to
	// "approved"/"rejected". Decisions are never downgraded by uploads.
	VerificationStatus     string              `bson:"verification_status,omitempty" json:"verificationStatus,omitempty"`
	VerificationNotes      string              `bson:"verification_notes,omitempty" json:"verificationNotes,omitempty"`
	VerificationReviewedBy *primitive.ObjectID `bson:"verification_reviewed_by,omitempty" json:"verificationReviewedBy,omitempty"`
	VerificationReviewedAt *time.Time          `bson:"verification_reviewed_at,omitempty" json:"verificationReviewedAt,omitempty"`
	VerifiedBy             *primitive.ObjectID `bson:"verified_by,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt             *time.Time          `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
	VerificationDocs       []VerificationDoc   `bson:"verification_docs,omitempty" json:"verificationDocs,omitempty"`

	EducatorProfile *EducatorProfile `bson:"educator_profile,omitempty" json:"educatorProfile,omitempty"`

	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// VerificationDoc is one uploaded verification document, embedded on the
// educator's org_users record.
type VerificationDoc struct {
	DocID      primitive.ObjectID `bson:"doc_id" json:"docId"`
	Type       string             `bson:"type" json:"type"`
	URL        string             `bson:"url" json:"url"`
	StorageKey string             `bson:"storage_key,omitempty" json:"storageKey,omitempty"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}

// EducatorProfile carries public-facing educator details.
type EducatorProfile struct {
	Title                string   `bson:"title,omitempty" json:"title,omitempty"`
	Bio                  string   `bson:"bio,omitempty" json:"bio,omitempty"`
	HighestQualification string   `bson:"highest_qualification,omitempty" json:"highestQualification,omitempty"`
	YearsOfExperience    *int     `bson:"years_of_experience,omitempty" json:"yearsOfExperience,omitempty"`
	ExpertiseAreas       []string `bson:"expertise_areas,omitempty" json:"expertiseAreas,omitempty"`
	Languages            []string `bson:"languages,omitempty" json:"languages,omitempty"`
	LinkedinURL          string   `bson:"linkedin_url,omitempty" json:"linkedinUrl,omitempty"`
	PortfolioURL         string   `bson:"portfolio_url,omitempty" json:"portfolioUrl,omitempty"`
}

// IsEducator reports whether the user holds the educator role.
func (u OrgUser) IsEducator() bool {
	return u.Role == RoleEducator
}
