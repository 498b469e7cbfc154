// internal/app/features/educators/handler.go
package educators

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/media"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves educator verification: document upload by educators and
// review decisions by admins.
type Handler struct {
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Files: files, Log: logger}
}

// List handles GET /admin/educators. Filters: verificationStatus, q.
// Sub-org admins only see educators inside their own sub-org.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return
	}

	filter := bson.M{"role": models.RoleEducator}
	if vs := normalize.Status(r.URL.Query().Get("verificationStatus")); vs != "" {
		if vs == models.VerificationUnverified {
			filter["$or"] = []bson.M{
				{"verification_status": bson.M{"$exists": false}},
				{"verification_status": ""},
				{"verification_status": models.VerificationUnverified},
			}
		} else {
			filter["verification_status"] = vs
		}
	}
	if id.Role == models.RoleSubOrgAdmin {
		oid, err := primitive.ObjectIDFromHex(id.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Forbidden("no sub-organization bound to this account").WithCode("FORBIDDEN"))
			return
		}
		filter["sub_org_id"] = oid
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	educators, err := th.Users.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list educators", err))
		return
	}
	total, err := th.Users.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count educators", err))
		return
	}
	httpx.OK(w, listResponse{Educators: educators, Total: total})
}

// Documents handles GET /admin/educators/{educatorID}/documents.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	th, edu, ok := h.educatorFromPath(w, r)
	if !ok {
		return
	}
	docs, err := th.EducatorDocs.ListByEducator(r.Context(), edu.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list documents", err))
		return
	}
	httpx.OK(w, docs)
}

// UploadOwnDocuments handles POST /educator/verification/documents. The
// caller uploads one or more files under the "documents" form field. A
// fresh upload moves an unverified educator to pending review but never
// overrides a recorded decision.
func (h *Handler) UploadOwnDocuments(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return
	}
	educatorID, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
		return
	}

	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid multipart form"))
		return
	}
	files := r.MultipartForm.File["documents"]
	if len(files) == 0 {
		httpx.Error(w, h.Log, apperr.BadRequest("at least one document is required"))
		return
	}
	docType := normalize.QueryParam(r.FormValue("type"))
	if docType == "" {
		docType = "other"
	}

	var docs []models.VerificationDoc
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("could not read uploaded file"))
			return
		}
		info, err := media.Upload(r.Context(), h.Files, "verification", fh.Filename, file, fh.Size, fh.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to store document", err))
			return
		}
		docs = append(docs, models.VerificationDoc{
			DocID:      primitive.NewObjectID(),
			Type:       docType,
			URL:        info.URL,
			StorageKey: info.Key,
			UploadedAt: time.Now().UTC(),
		})
	}

	if err := th.Users.AppendVerificationDocs(r.Context(), educatorID, docs); err != nil {
		if err == orguserstore.ErrNotFound {
			httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to record documents", err))
		return
	}
	for _, d := range docs {
		if _, err := th.EducatorDocs.Create(r.Context(), models.EducatorDocument{
			EducatorID: educatorID,
			Type:       d.Type,
			URL:        d.URL,
			StorageKey: d.StorageKey,
		}); err != nil {
			h.Log.Warn("failed to index educator document",
				zap.String("educator_id", educatorID.Hex()), zap.Error(err))
		}
	}

	edu, err := th.Users.GetByID(r.Context(), educatorID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload educator", err))
		return
	}
	httpx.Created(w, uploadResult{Docs: docs, VerificationStatus: edu.VerificationStatus})
}

// Approve handles POST /admin/educators/{educatorID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.VerificationApproved)
}

// Reject handles POST /admin/educators/{educatorID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.VerificationRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	th, edu, ok := h.educatorFromPath(w, r)
	if !ok {
		return
	}
	id, _ := auth.CurrentIdentity(r)
	reviewer, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
		return
	}

	var req decisionRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, h.Log, err)
			return
		}
	}

	if err := th.Users.SetVerificationDecision(r.Context(), edu.ID, status, normalize.QueryParam(req.Notes), reviewer); err != nil {
		if err == orguserstore.ErrNotFound {
			httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to record decision", err))
		return
	}
	updated, err := th.Users.GetByID(r.Context(), edu.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload educator", err))
		return
	}
	httpx.OK(w, updated)
}

// educatorFromPath loads the educator named by the educatorID URL
// parameter and enforces sub-org scoping for sub-org admins.
func (h *Handler) educatorFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.OrgUser, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, models.OrgUser{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "educatorID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid educator id"))
		return nil, models.OrgUser{}, false
	}
	edu, err := th.Users.GetByID(r.Context(), oid)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
		return nil, models.OrgUser{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load educator", err))
		return nil, models.OrgUser{}, false
	}
	if !edu.IsEducator() {
		httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
		return nil, models.OrgUser{}, false
	}

	if id, ok := auth.CurrentIdentity(r); ok && id.Role == models.RoleSubOrgAdmin {
		if edu.SubOrgID == nil || edu.SubOrgID.Hex() != id.SubOrgID {
			httpx.Error(w, h.Log, apperr.Forbidden("educator is outside your sub-organization").WithCode("FORBIDDEN"))
			return nil, models.OrgUser{}, false
		}
	}
	return th, edu, true
}
