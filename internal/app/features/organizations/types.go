// internal/app/features/organizations/types.go
package organizations

import "github.com/dalemusser/coursedeck/internal/domain/models"

// updateRequest is the body of PATCH /superadmin/organizations/{id}.
// Slug and database name are immutable and silently ignored if sent.
type updateRequest struct {
	Name                 string `json:"name"`
	PrimaryContactName   string `json:"primaryContactName"`
	PrimaryContactEmail  string `json:"primaryContactEmail"`
	PrimaryContactPhone  string `json:"primaryContactPhone"`
	Status               string `json:"status"`
	SubscriptionPlanCode string `json:"subscriptionPlanCode"`
	SubscriptionStatus   string `json:"subscriptionStatus"`
	Domain               string `json:"domain"`
}

// provisionResult is the data payload of a successful provisioning call.
// AdminCredentials echoes the seeded admin login so the operator can hand
// it to the organization's contact.
type provisionResult struct {
	Organization     models.Organization `json:"organization"`
	AdminSeeded      bool                `json:"adminSeeded"`
	AdminCredentials adminCredentials    `json:"adminCredentials"`
}

type adminCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// listResponse pages organizations.
type listResponse struct {
	Organizations []models.Organization `json:"organizations"`
	Total         int64                 `json:"total"`
}

// reconcileResult reports what the repair pass did.
type reconcileResult struct {
	SettingsSeeded bool `json:"settingsSeeded"`
	AdminSeeded    bool `json:"adminSeeded"`
}
