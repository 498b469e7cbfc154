package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is the master-database record for one tenant. The Slug is the
// public identifier used at login; DBName names the isolated MongoDB database
// that holds every per-tenant collection for this organization.
//
// Slug and DBName are unique across the master database. Organizations are
// never hard-deleted by application flows; suspended/inactive organizations
// simply stop resolving at login.
type Organization struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
	Slug   string             `bson:"slug" json:"slug"`
	DBName string             `bson:"db_name" json:"dbName"`

	PrimaryContactName  string `bson:"primary_contact_name,omitempty" json:"primaryContactName,omitempty"`
	PrimaryContactEmail string `bson:"primary_contact_email,omitempty" json:"primaryContactEmail,omitempty"`
	PrimaryContactPhone string `bson:"primary_contact_phone,omitempty" json:"primaryContactPhone,omitempty"`

	// active | inactive | suspended
	Status string `bson:"status" json:"status"`

	SubscriptionPlanCode string `bson:"subscription_plan_code,omitempty" json:"subscriptionPlanCode,omitempty"`
	// trial | active | expired | cancelled
	SubscriptionStatus string `bson:"subscription_status,omitempty" json:"subscriptionStatus,omitempty"`

	// Optional white-label domain.
	Domain string `bson:"domain,omitempty" json:"domain,omitempty"`

	Branding OrgBranding `bson:"branding,omitempty" json:"branding,omitempty"`

	CourseBuilderOverrides CourseBuilderOverrides `bson:"course_builder_overrides,omitempty" json:"courseBuilderOverrides,omitempty"`
	FeatureFlags           OrgFeatureFlags        `bson:"feature_flags,omitempty" json:"featureFlags,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// OrgBranding is the master-side branding summary. The authoritative tenant
// branding (logo, favicon, colors) lives in the tenant's org_settings.
type OrgBranding struct {
	LogoURL      string `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	FaviconURL   string `bson:"favicon_url,omitempty" json:"faviconUrl,omitempty"`
	PrimaryColor string `bson:"primary_color,omitempty" json:"primaryColor,omitempty"`
}

// CourseBuilderOverrides lets a plan raise or lower the tenant's course
// builder limits without touching the tenant database.
type CourseBuilderOverrides struct {
	MaxActiveCourses           int      `bson:"max_active_courses,omitempty" json:"maxActiveCourses,omitempty"`
	MaxDraftCourses            int      `bson:"max_draft_courses,omitempty" json:"maxDraftCourses,omitempty"`
	MaxSectionsPerCourse       int      `bson:"max_sections_per_course,omitempty" json:"maxSectionsPerCourse,omitempty"`
	MaxLessonsPerSection       int      `bson:"max_lessons_per_section,omitempty" json:"maxLessonsPerSection,omitempty"`
	AllowedContentTypes        []string `bson:"allowed_content_types,omitempty" json:"allowedContentTypes,omitempty"`
	AllowQuestionBanks         bool     `bson:"allow_question_banks,omitempty" json:"allowQuestionBanks,omitempty"`
	AllowAssignments           bool     `bson:"allow_assignments,omitempty" json:"allowAssignments,omitempty"`
	AllowDripScheduling        bool     `bson:"allow_drip_scheduling,omitempty" json:"allowDripScheduling,omitempty"`
	AllowPrerequisites         bool     `bson:"allow_prerequisites,omitempty" json:"allowPrerequisites,omitempty"`
	AllowCertificatesPerCourse bool     `bson:"allow_certificates_per_course,omitempty" json:"allowCertificatesPerCourse,omitempty"`
}

// OrgFeatureFlags gates optional tenant-facing features.
type OrgFeatureFlags struct {
	EnableB2CSignup           bool `bson:"enable_b2c_signup" json:"enableB2CSignup"`
	EnablePhoneOTPLogin       bool `bson:"enable_phone_otp_login" json:"enablePhoneOtpLogin"`
	EnablePublicCourseCatalog bool `bson:"enable_public_course_catalog" json:"enablePublicCourseCatalog"`
}
