// internal/app/features/users/handler.go
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
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

// Handler serves tenant user management for admins and sub-org admins.
// Sub-org admins only see and manage users inside their own sub-org.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// List handles GET /admin/users. Filters: role, status, subOrgId, q.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}

	filter := bson.M{}
	if role := normalize.Role(r.URL.Query().Get("role")); role != "" {
		if role == "suborgadmin" {
			role = models.RoleSubOrgAdmin
		}
		filter["role"] = role
	}
	if status := normalize.Status(r.URL.Query().Get("status")); status != "" {
		filter["status"] = status
	}

	if err := applySubOrgScope(filter, id, r.URL.Query().Get("subOrgId")); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	users, err := th.Users.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list users", err))
		return
	}
	total, err := th.Users.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count users", err))
		return
	}
	httpx.OK(w, listResponse{Users: users, Total: total})
}

// Create handles POST /admin/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	name := normalize.Name(req.Name)
	email := normalize.Email(req.Email)
	if name == "" || email == "" || req.Password == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("name, email, and password are required"))
		return
	}

	role := req.Role
	switch role {
	case models.RoleAdmin, models.RoleSubOrgAdmin, models.RoleEducator, models.RoleLearner:
	default:
		httpx.Error(w, h.Log, apperr.BadRequest("invalid role"))
		return
	}

	// Sub-org admins can only create educators and learners, always inside
	// their own sub-org.
	if id.Role == models.RoleSubOrgAdmin {
		if role != models.RoleEducator && role != models.RoleLearner {
			httpx.Error(w, h.Log, apperr.Forbidden("insufficient permissions to create this role").WithCode("FORBIDDEN"))
			return
		}
		req.SubOrgID = id.SubOrgID
	}

	var subOrgID *primitive.ObjectID
	if req.SubOrgID != "" {
		oid, err := primitive.ObjectIDFromHex(req.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid subOrgId"))
			return
		}
		if _, err := th.SubOrgs.GetByID(r.Context(), oid); err != nil {
			if err == suborgstore.ErrNotFound {
				httpx.Error(w, h.Log, apperr.BadRequest("sub-organization does not exist"))
				return
			}
			httpx.Error(w, h.Log, apperr.Internal("failed to check sub-organization", err))
			return
		}
		subOrgID = &oid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to hash password", err))
		return
	}

	var createdBy *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
		createdBy = &oid
	}

	u, err := th.Users.Create(r.Context(), models.OrgUser{
		Name:         name,
		Email:        email,
		Phone:        normalize.QueryParam(req.Phone),
		PasswordHash: string(hash),
		Role:         role,
		SubOrgID:     subOrgID,
		CreatedBy:    createdBy,
	})
	if err != nil {
		if err == orguserstore.ErrDuplicateEmail {
			httpx.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to create user", err))
		return
	}
	httpx.Created(w, u)
}

// Get handles GET /admin/users/{userID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}
	u, ok := h.userFromPath(w, r, th, id)
	if !ok {
		return
	}
	httpx.OK(w, u)
}

// Update handles PATCH /admin/users/{userID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}
	u, ok := h.userFromPath(w, r, th, id)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	update := models.OrgUser{
		Name:   normalize.Name(req.Name),
		Phone:  normalize.QueryParam(req.Phone),
		Status: normalize.Status(req.Status),
	}
	if update.Status != "" {
		switch update.Status {
		case models.StatusActive, models.StatusInactive, models.StatusBlocked:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid status"))
			return
		}
	}
	if req.Role != "" {
		switch req.Role {
		case models.RoleAdmin, models.RoleSubOrgAdmin, models.RoleEducator, models.RoleLearner:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid role"))
			return
		}
		// Same ceiling as Create: sub-org admins may only hand out the
		// educator and learner roles.
		if id.Role == models.RoleSubOrgAdmin && req.Role != models.RoleEducator && req.Role != models.RoleLearner {
			httpx.Error(w, h.Log, apperr.Forbidden("insufficient permissions to assign this role").WithCode("FORBIDDEN"))
			return
		}
		update.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to hash password", err))
			return
		}
		update.PasswordHash = string(hash)
	}
	if req.SubOrgID != "" && id.Role != models.RoleSubOrgAdmin {
		oid, err := primitive.ObjectIDFromHex(req.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid subOrgId"))
			return
		}
		update.SubOrgID = &oid
	}

	if err := th.Users.Update(r.Context(), u.ID, update); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update user", err))
		return
	}

	updated, err := th.Users.GetByID(r.Context(), u.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload user", err))
		return
	}
	httpx.OK(w, updated)
}

// Delete handles DELETE /admin/users/{userID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}
	u, ok := h.userFromPath(w, r, th, id)
	if !ok {
		return
	}

	if _, err := th.Users.Delete(r.Context(), u.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete user", err))
		return
	}
	httpx.OKMessage(w, "user deleted", nil)
}

// userFromPath loads the user named by the userID URL parameter and
// enforces sub-org scoping for sub-org admins.
func (h *Handler) userFromPath(w http.ResponseWriter, r *http.Request, th *tenant.Handle, id *auth.Identity) (models.OrgUser, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid user id"))
		return models.OrgUser{}, false
	}
	u, err := th.Users.GetByID(r.Context(), oid)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("user not found"))
		return models.OrgUser{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load user", err))
		return models.OrgUser{}, false
	}

	if id.Role == models.RoleSubOrgAdmin {
		if u.SubOrgID == nil || u.SubOrgID.Hex() != id.SubOrgID {
			httpx.Error(w, h.Log, apperr.Forbidden("user is outside your sub-organization").WithCode("FORBIDDEN"))
			return models.OrgUser{}, false
		}
	}
	return u, true
}

// tenantAndIdentity pulls both the tenant handle and the caller's
// identity out of the request context.
func tenantAndIdentity(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*tenant.Handle, *auth.Identity, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, logger, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, nil, false
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, logger, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return nil, nil, false
	}
	return th, id, true
}

// applySubOrgScope narrows a list filter by sub-org. Sub-org admins are
// always pinned to their own sub-org regardless of the query parameter.
func applySubOrgScope(filter bson.M, id *auth.Identity, requested string) error {
	if id.Role == models.RoleSubOrgAdmin {
		oid, err := primitive.ObjectIDFromHex(id.SubOrgID)
		if err != nil {
			return apperr.Forbidden("no sub-organization bound to this account").WithCode("FORBIDDEN")
		}
		filter["sub_org_id"] = oid
		return nil
	}
	if requested != "" {
		oid, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			return apperr.BadRequest("invalid subOrgId")
		}
		filter["sub_org_id"] = oid
	}
	return nil
}
