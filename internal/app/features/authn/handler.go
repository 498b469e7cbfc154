// internal/app/features/authn/handler.go
package authn

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	organizationstore "github.com/dalemusser/coursedeck/internal/app/store/organizations"
	orgsettingsstore "github.com/dalemusser/coursedeck/internal/app/store/orgsettings"
	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	superadminstore "github.com/dalemusser/coursedeck/internal/app/store/superadmins"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/ratelimit"
	"github.com/dalemusser/coursedeck/internal/app/system/token"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves the login endpoints. Super admins authenticate against
// the master database; everyone else resolves their tenant by org slug
// first and authenticates inside the tenant database.
type Handler struct {
	Orgs        *organizationstore.Store
	SuperAdmins *superadminstore.Store
	Registry    *tenant.Registry
	Codec       *token.Codec
	Limits      *ratelimit.LoginLimiter
	Log         *zap.Logger
}

func NewHandler(orgs *organizationstore.Store, superAdmins *superadminstore.Store, registry *tenant.Registry, codec *token.Codec, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:        orgs,
		SuperAdmins: superAdmins,
		Registry:    registry,
		Codec:       codec,
		Limits:      ratelimit.NewLoginLimiter(),
		Log:         logger,
	}
}

// checkRateLimit rejects the attempt with 429 when the caller's IP or the
// target account has exhausted its login budget.
func (h *Handler) checkRateLimit(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.Limits == nil {
		return true
	}
	allowed, reason := h.Limits.Check(r, email)
	if !allowed {
		httpx.Error(w, h.Log, apperr.TooManyRequests(reason))
		return false
	}
	return true
}

// SuperAdminLogin handles POST /auth/superadmin/login.
func (h *Handler) SuperAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req superAdminLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("email and password are required"))
		return
	}
	if !h.checkRateLimit(w, r, email) {
		return
	}

	sa, err := h.SuperAdmins.GetActiveByEmail(r.Context(), email)
	if err == superadminstore.ErrNotFound {
		httpx.Error(w, h.Log, invalidCredentials())
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("login failed", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(sa.PasswordHash), []byte(req.Password)) != nil {
		httpx.Error(w, h.Log, invalidCredentials())
		return
	}
	if h.Limits != nil {
		h.Limits.ResetEmail(email)
	}

	signed, err := h.Codec.Sign(sa.ID.Hex(), models.RoleSuperAdmin, "", "", "")
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("login failed", err))
		return
	}

	if err := h.SuperAdmins.TouchLastLogin(r.Context(), sa.ID); err != nil {
		h.Log.Warn("failed to stamp last login", zap.String("superadmin", sa.ID.Hex()), zap.Error(err))
	}

	httpx.OK(w, loginResponse{
		Token: signed,
		User: loginUser{
			ID:    sa.ID.Hex(),
			Name:  sa.Name,
			Email: sa.Email,
			Role:  models.RoleSuperAdmin,
		},
	})
}

// AdminLogin handles POST /auth/admin/login. The role is fixed to admin.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req tenantLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	req.Role = models.RoleAdmin
	h.tenantLogin(w, r, req)
}

// Login handles POST /auth/login for sub-org admins, educators, and
// learners. Role defaults to learner when omitted.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req tenantLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleLearner
	}
	switch req.Role {
	case models.RoleSubOrgAdmin, models.RoleEducator, models.RoleLearner:
	default:
		httpx.Error(w, h.Log, apperr.BadRequest("unsupported role for this endpoint"))
		return
	}
	h.tenantLogin(w, r, req)
}

func (h *Handler) tenantLogin(w http.ResponseWriter, r *http.Request, req tenantLoginRequest) {
	email := normalize.Email(req.Email)
	slug := normalize.QueryParam(req.OrgSlug)
	if slug == "" || email == "" || req.Password == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("orgSlug, email, and password are required"))
		return
	}
	if !h.checkRateLimit(w, r, email) {
		return
	}

	org, err := h.Orgs.GetActiveBySlug(r.Context(), slug)
	if err == organizationstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("organization not found").WithCode("TENANT_NOT_FOUND"))
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("login failed", err))
		return
	}

	th, err := h.Registry.Resolve(r.Context(), org.DBName)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	u, err := th.Users.GetActiveByEmailAndRole(r.Context(), email, req.Role)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, invalidCredentials())
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("login failed", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpx.Error(w, h.Log, invalidCredentials())
		return
	}
	if h.Limits != nil {
		h.Limits.ResetEmail(email)
	}

	subOrgID := ""
	if u.SubOrgID != nil {
		subOrgID = u.SubOrgID.Hex()
	}
	signed, err := h.Codec.Sign(u.ID.Hex(), u.Role, org.ID.Hex(), org.DBName, subOrgID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("login failed", err))
		return
	}

	if err := th.Users.TouchLastLogin(r.Context(), u.ID); err != nil {
		h.Log.Warn("failed to stamp last login", zap.String("user", u.ID.Hex()), zap.Error(err))
	}

	httpx.OK(w, loginResponse{
		Token: signed,
		User: loginUser{
			ID:       u.ID.Hex(),
			Name:     u.Name,
			Email:    u.Email,
			Role:     u.Role,
			SubOrgID: subOrgID,
		},
		Org: h.loginOrg(r, org, th),
	})
}

// loginOrg assembles the branding block from tenant settings, falling back
// to defaults when the tenant has never saved settings.
func (h *Handler) loginOrg(r *http.Request, org models.Organization, th *tenant.Handle) *loginOrg {
	settings, err := th.Settings.Get(r.Context())
	if err != nil && err != orgsettingsstore.ErrNotFound {
		h.Log.Warn("failed to load org settings for branding", zap.String("tenant", org.DBName), zap.Error(err))
	}

	s := &settings
	if err != nil {
		s = nil
	}
	return &loginOrg{
		ID:   org.ID.Hex(),
		Name: org.Name,
		Slug: org.Slug,
		Branding: loginBranding{
			LogoURL:        s.EffectiveLogoURL(),
			PrimaryColor:   s.EffectivePrimaryColor(),
			SecondaryColor: s.EffectiveSecondaryColor(),
		},
	}
}

func invalidCredentials() error {
	return apperr.Unauthorized("invalid credentials").WithCode("UNAUTHORIZED")
}
