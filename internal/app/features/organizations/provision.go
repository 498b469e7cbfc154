// internal/app/features/organizations/provision.go
package organizations

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	organizationstore "github.com/dalemusser/coursedeck/internal/app/store/organizations"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/indexes"
	"github.com/dalemusser/coursedeck/internal/app/system/media"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// DefaultAdminPassword is assigned to the seeded tenant admin. Admins are
// expected to change it on first sign-in.
const DefaultAdminPassword = "Admin@123"

// Provision handles POST /superadmin/organizations. The request is
// multipart form data: name and primaryContactEmail are required fields,
// and a logo file is required. Slug, dbName, and adminPassword are
// optional and derived when absent; a favicon file is optional. Tenant
// seeding (settings + first admin) is best effort; a seeding failure
// leaves the organization created and is repaired later via Reconcile.
func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid multipart form"))
		return
	}

	name := normalize.Name(r.FormValue("name"))
	contactEmail := normalize.Email(r.FormValue("primaryContactEmail"))
	if name == "" || contactEmail == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("name and primaryContactEmail are required"))
		return
	}

	slug := normalize.Slug(r.FormValue("slug"))
	if slug == "" {
		slug = normalize.Slug(name)
	}
	if slug == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("name must contain at least one letter or digit"))
		return
	}
	dbName := normalize.DBName(normalize.Slug(r.FormValue("dbName")))
	if dbName == "" {
		dbName = normalize.DBName(slug)
	}
	adminPassword := r.FormValue("adminPassword")
	if adminPassword == "" {
		adminPassword = DefaultAdminPassword
	}

	exists, err := h.Orgs.SlugOrDBNameExists(r.Context(), slug, dbName)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to check slug availability", err))
		return
	}
	if exists {
		httpx.Error(w, h.Log, apperr.Conflict("an organization with this name already exists"))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("logo file is required"))
		return
	}
	defer file.Close()

	upload, err := media.Upload(r.Context(), h.Files, "logos", header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to store logo", err))
		return
	}

	branding := models.OrgBranding{LogoURL: upload.URL}
	if fav, favHeader, favErr := r.FormFile("favicon"); favErr == nil {
		favUpload, upErr := media.Upload(r.Context(), h.Files, "favicons", favHeader.Filename, fav, favHeader.Size, favHeader.Header.Get("Content-Type"))
		fav.Close()
		if upErr != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to store favicon", upErr))
			return
		}
		branding.FaviconURL = favUpload.URL
	}

	org := models.Organization{
		Name:                 name,
		Slug:                 slug,
		DBName:               dbName,
		PrimaryContactName:   normalize.Name(r.FormValue("primaryContactName")),
		PrimaryContactEmail:  contactEmail,
		PrimaryContactPhone:  normalize.QueryParam(r.FormValue("primaryContactPhone")),
		SubscriptionPlanCode: r.FormValue("subscriptionPlanCode"),
		Branding:             branding,
	}

	created, err := h.Orgs.Create(r.Context(), org)
	if err != nil {
		if err == organizationstore.ErrDuplicateOrganization {
			httpx.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to create organization", err))
		return
	}

	adminSeeded := h.seedTenant(r.Context(), created, adminPassword)

	httpx.Created(w, provisionResult{
		Organization: created,
		AdminSeeded:  adminSeeded,
		AdminCredentials: adminCredentials{
			Email:    created.PrimaryContactEmail,
			Password: adminPassword,
		},
	})
}

// Reconcile handles POST /superadmin/organizations/{orgID}/reconcile. It
// re-runs the tenant seeding for organizations whose provisioning was
// interrupted, creating the settings singleton and the first admin account
// if they are missing.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	org, ok := h.orgFromPath(w, r)
	if !ok {
		return
	}

	th, err := h.Registry.Resolve(r.Context(), org.DBName)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	result := reconcileResult{}

	if err := indexes.EnsureTenant(r.Context(), th.DB); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to ensure tenant indexes", err))
		return
	}

	if _, err := th.Settings.Get(r.Context()); err != nil {
		if seedErr := h.seedSettings(r.Context(), th, org); seedErr != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to seed settings", seedErr))
			return
		}
		result.SettingsSeeded = true
	}

	adminExists, err := th.Users.Count(r.Context(), adminFilter())
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to check tenant admins", err))
		return
	}
	if adminExists == 0 {
		if err := h.seedAdmin(r.Context(), th, org, DefaultAdminPassword); err != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to seed admin", err))
			return
		}
		result.AdminSeeded = true
	}

	httpx.OK(w, result)
}

// seedTenant initializes the new tenant's database. Failures are logged
// and never roll back the organization record; Reconcile repairs them.
func (h *Handler) seedTenant(ctx context.Context, org models.Organization, adminPassword string) bool {
	th, err := h.Registry.Resolve(ctx, org.DBName)
	if err != nil {
		h.Log.Error("tenant resolve failed during provisioning",
			zap.String("tenant", org.DBName), zap.Error(err))
		return false
	}

	if err := indexes.EnsureTenant(ctx, th.DB); err != nil {
		h.Log.Error("tenant index ensure failed",
			zap.String("tenant", org.DBName), zap.Error(err))
	}

	if err := h.seedSettings(ctx, th, org); err != nil {
		h.Log.Error("tenant settings seed failed",
			zap.String("tenant", org.DBName), zap.Error(err))
	}

	if err := h.seedAdmin(ctx, th, org, adminPassword); err != nil {
		h.Log.Error("tenant admin seed failed",
			zap.String("tenant", org.DBName), zap.Error(err))
		return false
	}
	return true
}

func (h *Handler) seedSettings(ctx context.Context, th *tenant.Handle, org models.Organization) error {
	orgID := org.ID
	return th.Settings.Seed(ctx, models.OrgSettings{
		OrgID: &orgID,
		Branding: models.SettingsBranding{
			LogoURL:        org.Branding.LogoURL,
			FaviconURL:     org.Branding.FaviconURL,
			PrimaryColor:   models.DefaultPrimaryColor,
			SecondaryColor: models.DefaultSecondaryColor,
		},
		Auth: models.AuthPreferences{
			AllowEmailLogin: true,
		},
		CourseBuilder: models.CourseBuilderSettings{
			AllowEducatorPublishing: false,
		},
		Notifications: models.NotificationSettings{
			EmailEnabled: true,
		},
	})
}

func (h *Handler) seedAdmin(ctx context.Context, th *tenant.Handle, org models.Organization, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminName := org.PrimaryContactName
	if adminName == "" {
		adminName = org.Name + " Admin"
	}

	_, err = th.Users.Create(ctx, models.OrgUser{
		Name:         adminName,
		Email:        org.PrimaryContactEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	return err
}

func adminFilter() bson.M {
	return bson.M{"role": models.RoleAdmin}
}
