// internal/app/features/users/types.go
package users

import "github.com/dalemusser/coursedeck/internal/domain/models"

// createRequest is the body of POST /admin/users.
type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
	SubOrgID string `json:"subOrgId"`
}

// updateRequest is the body of PATCH /admin/users/{userID}. Empty fields
// are left unchanged.
type updateRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	Password string `json:"password"`
	SubOrgID string `json:"subOrgId"`
}

// listResponse pages tenant users.
type listResponse struct {
	Users []models.OrgUser `json:"users"`
	Total int64            `json:"total"`
}
