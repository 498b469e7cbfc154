// internal/app/features/suborgs/handler.go
package suborgs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	suborgstore "github.com/dalemusser/coursedeck/internal/app/store/suborgs"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves sub-organization management inside one tenant.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// List handles GET /admin/suborgs. Each item carries its member count.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}

	filter := bson.M{}
	if status := normalize.Status(r.URL.Query().Get("status")); status != "" {
		filter["status"] = status
	}
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		filter["name_ci"] = bson.M{"$regex": text.Fold(q)}
	}
	if id, ok := auth.CurrentIdentity(r); ok && id.Role == models.RoleSubOrgAdmin {
		oid, err := primitive.ObjectIDFromHex(id.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Forbidden("no sub-organization bound to this account").WithCode("FORBIDDEN"))
			return
		}
		filter["_id"] = oid
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	subOrgs, err := th.SubOrgs.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list sub-organizations", err))
		return
	}
	total, err := th.SubOrgs.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count sub-organizations", err))
		return
	}
	counts, err := th.Users.CountBySubOrg(r.Context())
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count sub-organization members", err))
		return
	}

	items := make([]subOrgItem, 0, len(subOrgs))
	for _, so := range subOrgs {
		items = append(items, subOrgItem{SubOrg: so, UserCount: counts[so.ID]})
	}
	httpx.OK(w, listResponse{SubOrgs: items, Total: total})
}

// Create handles POST /admin/suborgs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	name := normalize.Name(req.Name)
	if name == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("name is required"))
		return
	}
	if req.Admin != nil {
		if normalize.Name(req.Admin.Name) == "" || normalize.Email(req.Admin.Email) == "" || req.Admin.Password == "" {
			httpx.Error(w, h.Log, apperr.BadRequest("admin name, email, and password are required"))
			return
		}
	}

	exists, err := th.SubOrgs.ExistsByNameCI(r.Context(), text.Fold(name))
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to check sub-organization name", err))
		return
	}
	if exists {
		httpx.Error(w, h.Log, apperr.Conflict("a sub-organization with this name already exists"))
		return
	}

	so := models.SubOrg{
		Name:        name,
		Description: normalize.QueryParam(req.Description),
	}
	if id, ok := auth.CurrentIdentity(r); ok {
		if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
			so.CreatedBy = &oid
		}
	}

	created, err := th.SubOrgs.Create(r.Context(), so)
	if err != nil {
		if err == suborgstore.ErrDuplicateSubOrg {
			httpx.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to create sub-organization", err))
		return
	}

	resp := createResponse{SubOrg: created}
	if req.Admin != nil {
		admin, err := h.createAdmin(r, th, created, *req.Admin)
		if err != nil {
			// Unwind the sub-org so a failed combined create leaves
			// nothing behind.
			if _, derr := th.SubOrgs.Delete(r.Context(), created.ID); derr != nil {
				h.Log.Error("failed to unwind sub-organization after admin create failure",
					zap.String("sub_org_id", created.ID.Hex()), zap.Error(derr))
			}
			httpx.Error(w, h.Log, err)
			return
		}
		resp.Admin = &admin
	}
	httpx.Created(w, resp)
}

// createAdmin creates the sub-org admin account for a combined
// create-with-admin request.
func (h *Handler) createAdmin(r *http.Request, th *tenant.Handle, so models.SubOrg, req adminRequest) (models.OrgUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.OrgUser{}, apperr.Internal("failed to hash password", err)
	}

	u := models.OrgUser{
		Name:         normalize.Name(req.Name),
		Email:        normalize.Email(req.Email),
		PasswordHash: string(hash),
		Role:         models.RoleSubOrgAdmin,
		SubOrgID:     &so.ID,
	}
	if id, ok := auth.CurrentIdentity(r); ok {
		if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
			u.CreatedBy = &oid
		}
	}

	admin, err := th.Users.Create(r.Context(), u)
	if err == orguserstore.ErrDuplicateEmail {
		return models.OrgUser{}, apperr.Conflict(err.Error())
	}
	if err != nil {
		return models.OrgUser{}, apperr.Internal("failed to create sub-organization admin", err)
	}
	return admin, nil
}

// Get handles GET /admin/suborgs/{subOrgID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	th, so, ok := h.subOrgFromPath(w, r)
	if !ok {
		return
	}
	if id, ok := auth.CurrentIdentity(r); ok && id.Role == models.RoleSubOrgAdmin && id.SubOrgID != so.ID.Hex() {
		httpx.Error(w, h.Log, apperr.Forbidden("sub-organization is outside your scope").WithCode("FORBIDDEN"))
		return
	}
	counts, err := th.Users.CountBySubOrg(r.Context())
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count sub-organization members", err))
		return
	}
	httpx.OK(w, subOrgItem{SubOrg: so, UserCount: counts[so.ID]})
}

// Update handles PATCH /admin/suborgs/{subOrgID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	th, so, ok := h.subOrgFromPath(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	update := models.SubOrg{
		Name:        normalize.Name(req.Name),
		Description: normalize.QueryParam(req.Description),
		Status:      normalize.Status(req.Status),
	}
	if update.Status != "" {
		switch update.Status {
		case models.StatusActive, models.StatusInactive:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid status"))
			return
		}
	}
	if update.Name != "" && update.Name != so.Name {
		exists, err := th.SubOrgs.ExistsByNameCI(r.Context(), text.Fold(update.Name))
		if err != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to check sub-organization name", err))
			return
		}
		if exists {
			httpx.Error(w, h.Log, apperr.Conflict("a sub-organization with this name already exists"))
			return
		}
	}

	if err := th.SubOrgs.Update(r.Context(), so.ID, update); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update sub-organization", err))
		return
	}
	updated, err := th.SubOrgs.GetByID(r.Context(), so.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload sub-organization", err))
		return
	}
	httpx.OK(w, updated)
}

// Delete handles DELETE /admin/suborgs/{subOrgID}. A sub-org with members
// still attached cannot be deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	th, so, ok := h.subOrgFromPath(w, r)
	if !ok {
		return
	}

	n, err := th.Users.Count(r.Context(), bson.M{"sub_org_id": so.ID})
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count sub-organization members", err))
		return
	}
	if n > 0 {
		httpx.Error(w, h.Log, apperr.Conflict("sub-organization still has members"))
		return
	}

	if _, err := th.SubOrgs.Delete(r.Context(), so.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete sub-organization", err))
		return
	}
	httpx.OKMessage(w, "sub-organization deleted", nil)
}

func (h *Handler) subOrgFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.SubOrg, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, models.SubOrg{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "subOrgID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid sub-organization id"))
		return nil, models.SubOrg{}, false
	}
	so, err := th.SubOrgs.GetByID(r.Context(), oid)
	if err == suborgstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("sub-organization not found"))
		return nil, models.SubOrg{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load sub-organization", err))
		return nil, models.SubOrg{}, false
	}
	return th, so, true
}
