// internal/app/features/batches/handler.go
package batches

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	batchstore "github.com/dalemusser/coursedeck/internal/app/store/batches"
	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves batch management and enrollment.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// List handles GET /batches. Filters: status, courseId, q.
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
	if courseID := normalize.QueryParam(r.URL.Query().Get("courseId")); courseID != "" {
		filter["course_id"] = courseID
	}
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		filter["name_ci"] = bson.M{"$regex": text.Fold(q)}
	}
	if id, ok := auth.CurrentIdentity(r); ok {
		switch id.Role {
		case models.RoleSubOrgAdmin:
			oid, err := primitive.ObjectIDFromHex(id.SubOrgID)
			if err != nil {
				httpx.Error(w, h.Log, apperr.Forbidden("no sub-organization bound to this account").WithCode("FORBIDDEN"))
				return
			}
			filter["sub_org_id"] = oid
		case models.RoleEducator:
			oid, err := primitive.ObjectIDFromHex(id.UserID)
			if err != nil {
				httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
				return
			}
			filter["educator_id"] = oid
		}
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	list, err := th.Batches.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list batches", err))
		return
	}
	total, err := th.Batches.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count batches", err))
		return
	}
	httpx.OK(w, listResponse{Batches: list, Total: total})
}

// Create handles POST /batches.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}

	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	name := normalize.Name(req.Name)
	courseID := normalize.QueryParam(req.CourseID)
	if name == "" || courseID == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("name and courseId are required"))
		return
	}

	mode := normalize.Status(req.Mode)
	if mode == "" {
		mode = models.BatchModeOnline
	}
	switch mode {
	case models.BatchModeOnline, models.BatchModeOffline, models.BatchModeHybrid:
	default:
		httpx.Error(w, h.Log, apperr.BadRequest("invalid mode"))
		return
	}

	b := models.Batch{
		Name:        name,
		Code:        normalize.QueryParam(req.Code),
		Description: normalize.QueryParam(req.Description),
		CourseID:    courseID,
		Mode:        mode,
	}
	if req.Schedule != nil {
		b.Schedule = *req.Schedule
	}
	if req.MaxLearners != nil {
		if *req.MaxLearners < 0 {
			httpx.Error(w, h.Log, apperr.BadRequest("maxLearners cannot be negative"))
			return
		}
		b.MaxLearners = *req.MaxLearners
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return
	}

	educatorID := req.EducatorID
	if id.Role == models.RoleEducator {
		// Educators can only run their own batches.
		if educatorID != "" && educatorID != id.UserID {
			httpx.Error(w, h.Log, apperr.Forbidden("educators can only assign themselves").WithCode("FORBIDDEN"))
			return
		}
		educatorID = id.UserID
	}
	if educatorID != "" {
		edu, ok := h.verifiedEducator(w, r, th, educatorID, id)
		if !ok {
			return
		}
		b.EducatorID = &edu.ID
	}
	if req.SubOrgID != "" {
		oid, err := primitive.ObjectIDFromHex(req.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid subOrgId"))
			return
		}
		b.SubOrgID = &oid
	}
	if id.Role == models.RoleSubOrgAdmin {
		// Sub-org admins create batches inside their own sub-org only.
		oid, err := primitive.ObjectIDFromHex(id.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Forbidden("no sub-organization bound to this account").WithCode("FORBIDDEN"))
			return
		}
		b.SubOrgID = &oid
	}
	if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
		b.CreatedBy = &oid
	}

	created, err := th.Batches.Create(r.Context(), b)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to create batch", err))
		return
	}
	httpx.Created(w, created)
}

// Get handles GET /batches/{batchID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}
	httpx.OK(w, b)
}

// Update handles PATCH /batches/{batchID}. The enrolled counter can only
// move through enrollments, never through an update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}

	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if name := normalize.Name(req.Name); name != "" {
		set["name"] = name
	}
	if req.Code != "" {
		set["code"] = normalize.QueryParam(req.Code)
	}
	if mode := normalize.Status(req.Mode); mode != "" {
		switch mode {
		case models.BatchModeOnline, models.BatchModeOffline, models.BatchModeHybrid:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid mode"))
			return
		}
		set["mode"] = mode
	}
	if req.Description != "" {
		set["description"] = normalize.QueryParam(req.Description)
	}
	if req.Schedule != nil {
		set["schedule"] = *req.Schedule
	}
	if req.MaxLearners != nil {
		if *req.MaxLearners < 0 {
			httpx.Error(w, h.Log, apperr.BadRequest("maxLearners cannot be negative"))
			return
		}
		set["max_learners"] = *req.MaxLearners
	}
	if status := normalize.Status(req.Status); status != "" {
		switch status {
		case models.BatchDraft, models.BatchPublished, models.BatchOngoing, models.BatchCompleted, models.BatchCancelled:
		default:
			httpx.Error(w, h.Log, apperr.BadRequest("invalid status"))
			return
		}
		set["status"] = status
	}
	if req.EducatorID != "" {
		id, ok := auth.CurrentIdentity(r)
		if !ok {
			httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
			return
		}
		// Only org admins can reassign a batch to another educator.
		if id.Role != models.RoleAdmin {
			httpx.Error(w, h.Log, apperr.Forbidden("only organization admins can change the educator").WithCode("FORBIDDEN"))
			return
		}
		edu, ok := h.verifiedEducator(w, r, th, req.EducatorID, id)
		if !ok {
			return
		}
		set["educator_id"] = edu.ID
	}
	if len(set) == 0 {
		httpx.OK(w, b)
		return
	}

	if err := th.Batches.Update(r.Context(), b.ID, set); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update batch", err))
		return
	}
	updated, err := th.Batches.GetByID(r.Context(), b.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload batch", err))
		return
	}
	httpx.OK(w, updated)
}

// Delete handles DELETE /batches/{batchID}. Enrollments go with the batch.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}
	if _, err := th.Enrollments.DeleteByBatch(r.Context(), b.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete enrollments", err))
		return
	}
	if _, err := th.Batches.Delete(r.Context(), b.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete batch", err))
		return
	}
	httpx.OKMessage(w, "batch deleted", nil)
}

// batchFromPath loads the batch named by the batchID URL parameter.
func (h *Handler) batchFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.Batch, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, models.Batch{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "batchID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid batch id"))
		return nil, models.Batch{}, false
	}
	b, err := th.Batches.GetByID(r.Context(), oid)
	if err == batchstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("batch not found"))
		return nil, models.Batch{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load batch", err))
		return nil, models.Batch{}, false
	}
	if id, ok := auth.CurrentIdentity(r); ok {
		switch id.Role {
		case models.RoleSubOrgAdmin:
			if b.SubOrgID == nil || b.SubOrgID.Hex() != id.SubOrgID {
				httpx.Error(w, h.Log, apperr.Forbidden("batch is outside your sub-organization").WithCode("FORBIDDEN"))
				return nil, models.Batch{}, false
			}
		case models.RoleEducator:
			if b.EducatorID == nil || b.EducatorID.Hex() != id.UserID {
				httpx.Error(w, h.Log, apperr.Forbidden("batch belongs to another educator").WithCode("FORBIDDEN"))
				return nil, models.Batch{}, false
			}
		}
	}
	return th, b, true
}

// verifiedEducator resolves the educator id and checks the account is an
// educator whose verification has been approved. Sub-org admins can only
// reach educators inside their own sub-org.
func (h *Handler) verifiedEducator(w http.ResponseWriter, r *http.Request, th *tenant.Handle, educatorID string, id *auth.Identity) (models.OrgUser, bool) {
	oid, err := primitive.ObjectIDFromHex(educatorID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid educatorId"))
		return models.OrgUser{}, false
	}
	edu, err := th.Users.GetByID(r.Context(), oid)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.BadRequest("educator not found"))
		return models.OrgUser{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load educator", err))
		return models.OrgUser{}, false
	}
	if !edu.IsEducator() || edu.VerificationStatus != models.VerificationApproved {
		httpx.Error(w, h.Log, apperr.BadRequest("educator must be approved before taking batches"))
		return models.OrgUser{}, false
	}
	if id.Role == models.RoleSubOrgAdmin && (edu.SubOrgID == nil || edu.SubOrgID.Hex() != id.SubOrgID) {
		httpx.Error(w, h.Log, apperr.Forbidden("educator is outside your sub-organization").WithCode("FORBIDDEN"))
		return models.OrgUser{}, false
	}
	return edu, true
}
