// internal/app/features/authn/types.go
package authn

// superAdminLoginRequest is the body of POST /auth/superadmin/login.
type superAdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tenantLoginRequest is the body of the tenant login endpoints. Role is
// fixed by the endpoint for admin login and supplied by the client for the
// generic login (educator, learner, subOrgAdmin).
type tenantLoginRequest struct {
	OrgSlug  string `json:"orgSlug"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// loginUser is the caller's profile in a successful login response.
type loginUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SubOrgID string `json:"subOrgId,omitempty"`
}

// loginOrg carries tenant identity and branding so clients can theme the
// workspace immediately after login.
type loginOrg struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Branding loginBranding `json:"branding"`
}

type loginBranding struct {
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// loginResponse is the data payload of every successful login.
type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
	Org   *loginOrg `json:"org,omitempty"`
}
