// internal/app/features/suborgs/types.go
package suborgs

import "github.com/dalemusser/coursedeck/internal/domain/models"

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Optional sub-org admin created together with the sub-org.
	Admin *adminRequest `json:"admin"`
}

type adminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createResponse struct {
	SubOrg models.SubOrg   `json:"subOrg"`
	Admin  *models.OrgUser `json:"admin,omitempty"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// subOrgItem pairs a sub-organization with its current member count.
type subOrgItem struct {
	models.SubOrg
	UserCount int64 `json:"userCount"`
}

type listResponse struct {
	SubOrgs []subOrgItem `json:"subOrgs"`
	Total   int64        `json:"total"`
}
