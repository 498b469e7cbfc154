// internal/app/features/organizations/handler.go
package organizations

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	organizationstore "github.com/dalemusser/coursedeck/internal/app/store/organizations"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/text"
)

// Handler serves the superadmin organization control plane: provisioning,
// listing, updates, and tenant repair.
type Handler struct {
	Orgs     *organizationstore.Store
	Registry *tenant.Registry
	Files    storage.Store
	Log      *zap.Logger
}

func NewHandler(orgs *organizationstore.Store, registry *tenant.Registry, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:     orgs,
		Registry: registry,
		Files:    files,
		Log:      logger,
	}
}

// List handles GET /superadmin/organizations. Supports q (name search),
// status, and limit/offset paging.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := normalize.Status(r.URL.Query().Get("status")); status != "" {
		filter["status"] = status
	}
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		filter["name_ci"] = bson.M{"$regex": text.Fold(q)}
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	orgs, err := h.Orgs.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list organizations", err))
		return
	}
	total, err := h.Orgs.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count organizations", err))
		return
	}
	httpx.OK(w, listResponse{Organizations: orgs, Total: total})
}

// Get handles GET /superadmin/organizations/{orgID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	org, ok := h.orgFromPath(w, r)
	if !ok {
		return
	}
	httpx.OK(w, org)
}

// Update handles PATCH /superadmin/organizations/{orgID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	org, ok := h.orgFromPath(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	update := models.Organization{
		Name:                 normalize.Name(req.Name),
		PrimaryContactName:   normalize.Name(req.PrimaryContactName),
		PrimaryContactEmail:  normalize.Email(req.PrimaryContactEmail),
		PrimaryContactPhone:  normalize.QueryParam(req.PrimaryContactPhone),
		Status:               normalize.Status(req.Status),
		SubscriptionPlanCode: req.SubscriptionPlanCode,
		SubscriptionStatus:   normalize.Status(req.SubscriptionStatus),
		Domain:               normalize.QueryParam(req.Domain),
	}
	if update.Status != "" {
		switch update.Status {
		case models.StatusActive, models.StatusInactive, models.StatusSuspended:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid status"))
			return
		}
	}

	if err := h.Orgs.Update(r.Context(), org.ID, update); err != nil {
		if err == organizationstore.ErrDuplicateOrganization {
			httpx.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to update organization", err))
		return
	}

	updated, err := h.Orgs.GetByID(r.Context(), org.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload organization", err))
		return
	}
	httpx.OK(w, updated)
}

// Delete handles DELETE /superadmin/organizations/{orgID}. The tenant
// database itself is left in place for offline archival; the cached handle
// is dropped so a re-provisioned tenant starts fresh.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	org, ok := h.orgFromPath(w, r)
	if !ok {
		return
	}

	if _, err := h.Orgs.Delete(r.Context(), org.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete organization", err))
		return
	}
	h.Registry.Forget(org.DBName)
	httpx.OKMessage(w, "organization deleted", nil)
}

// orgFromPath loads the organization named by the orgID URL parameter,
// writing the error response itself when the ID is bad or unknown.
func (h *Handler) orgFromPath(w http.ResponseWriter, r *http.Request) (models.Organization, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid organization id"))
		return models.Organization{}, false
	}
	org, err := h.Orgs.GetByID(r.Context(), id)
	if err == organizationstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("organization not found").WithCode("TENANT_NOT_FOUND"))
		return models.Organization{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load organization", err))
		return models.Organization{}, false
	}
	return org, true
}
