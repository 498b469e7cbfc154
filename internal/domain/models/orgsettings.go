package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default branding colors used when a tenant has no settings document or
// leaves the color fields empty.
const (
	DefaultPrimaryColor   = "#2E5BFF"
	DefaultSecondaryColor = "#F2F4FF"
)

// OrgSettings is the per-tenant settings singleton (collection org_settings).
// There is at most one document per tenant database.
type OrgSettings struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrgID    *primitive.ObjectID `bson:"org_id,omitempty" json:"orgId,omitempty"`
	Branding SettingsBranding    `bson:"branding" json:"branding"`
	Auth     AuthPreferences     `bson:"auth" json:"auth"`

	CourseBuilder CourseBuilderSettings `bson:"course_builder" json:"courseBuilder"`
	Notifications NotificationSettings  `bson:"notifications" json:"notifications"`

	UpdatedBy *primitive.ObjectID `bson:"updated_by,omitempty" json:"updatedBy,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// SettingsBranding holds tenant look-and-feel delivered to login screens.
type SettingsBranding struct {
	LogoURL        string `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	LogoKey        string `bson:"logo_key,omitempty" json:"logoKey,omitempty"`
	FaviconURL     string `bson:"favicon_url,omitempty" json:"faviconUrl,omitempty"`
	PrimaryColor   string `bson:"primary_color,omitempty" json:"primaryColor,omitempty"`
	SecondaryColor string `bson:"secondary_color,omitempty" json:"secondaryColor,omitempty"`
}

// AuthPreferences controls how tenant users may sign in.
type AuthPreferences struct {
	AllowEmailLogin    bool `bson:"allow_email_login" json:"allowEmailLogin"`
	AllowPhoneLogin    bool `bson:"allow_phone_login" json:"allowPhoneLogin"`
	RequireVerifiedEdu bool `bson:"require_verified_edu" json:"requireVerifiedEdu"`
}

// CourseBuilderSettings gates authoring features for the tenant.
type CourseBuilderSettings struct {
	AllowEducatorPublishing bool `bson:"allow_educator_publishing" json:"allowEducatorPublishing"`
	MaxSectionsPerCourse    int  `bson:"max_sections_per_course,omitempty" json:"maxSectionsPerCourse,omitempty"`
	MaxLessonsPerSection    int  `bson:"max_lessons_per_section,omitempty" json:"maxLessonsPerSection,omitempty"`
}

// NotificationSettings toggles outbound notification channels.
type NotificationSettings struct {
	EmailEnabled bool `bson:"email_enabled" json:"emailEnabled"`
	SMSEnabled   bool `bson:"sms_enabled" json:"smsEnabled"`
}

// EffectivePrimaryColor returns the configured primary color or the default.
func (s *OrgSettings) EffectivePrimaryColor() string {
	if s == nil || s.Branding.PrimaryColor == "" {
		return DefaultPrimaryColor
	}
	return s.Branding.PrimaryColor
}

// EffectiveSecondaryColor returns the configured secondary color or the default.
func (s *OrgSettings) EffectiveSecondaryColor() string {
	if s == nil || s.Branding.SecondaryColor == "" {
		return DefaultSecondaryColor
	}
	return s.Branding.SecondaryColor
}

// EffectiveLogoURL returns the configured logo URL, empty when unset.
func (s *OrgSettings) EffectiveLogoURL() string {
	if s == nil {
		return ""
	}
	return s.Branding.LogoURL
}
