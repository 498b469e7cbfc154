// internal/app/features/educators/profile.go
package educators

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Get handles GET /admin/educators/{educatorID}: the educator record plus
// its indexed documents.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	th, edu, ok := h.educatorFromPath(w, r)
	if !ok {
		return
	}
	docs, err := th.EducatorDocs.ListByEducator(r.Context(), edu.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list documents", err))
		return
	}
	httpx.OK(w, detailResponse{Educator: edu, Documents: docs})
}

// Verification handles GET /educator/verification: the caller's own
// verification state and uploaded documents.
func (h *Handler) Verification(w http.ResponseWriter, r *http.Request) {
	_, self, ok := h.currentEducator(w, r)
	if !ok {
		return
	}
	status := self.VerificationStatus
	if status == "" {
		status = models.VerificationUnverified
	}
	httpx.OK(w, verificationView{
		Status: status,
		Notes:  self.VerificationNotes,
		Docs:   self.VerificationDocs,
	})
}

// UpdateOwnProfile handles PATCH /educator/profile. Fields absent from
// the body keep their stored values.
func (h *Handler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	th, self, ok := h.currentEducator(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	p := self.EducatorProfile
	if p == nil {
		p = &models.EducatorProfile{}
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.HighestQualification != nil {
		p.HighestQualification = *req.HighestQualification
	}
	if req.YearsOfExperience != nil {
		if *req.YearsOfExperience < 0 {
			httpx.Error(w, h.Log, apperr.BadRequest("yearsOfExperience cannot be negative"))
			return
		}
		p.YearsOfExperience = req.YearsOfExperience
	}
	if req.ExpertiseAreas != nil {
		p.ExpertiseAreas = req.ExpertiseAreas
	}
	if req.Languages != nil {
		p.Languages = req.Languages
	}
	if req.LinkedinURL != nil {
		p.LinkedinURL = *req.LinkedinURL
	}
	if req.PortfolioURL != nil {
		p.PortfolioURL = *req.PortfolioURL
	}

	if err := th.Users.SetEducatorProfile(r.Context(), self.ID, p); err != nil {
		if err == orguserstore.ErrNotFound {
			httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
			return
		}
		httpx.Error(w, h.Log, apperr.Internal("failed to update profile", err))
		return
	}

	updated, err := th.Users.GetByID(r.Context(), self.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload educator", err))
		return
	}
	httpx.OK(w, updated)
}

// DeleteOwnDocument handles DELETE /educator/verification/documents/{docID}.
// The embedded document is removed first; deleting the stored file is
// best effort.
func (h *Handler) DeleteOwnDocument(w http.ResponseWriter, r *http.Request) {
	th, self, ok := h.currentEducator(w, r)
	if !ok {
		return
	}
	docID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "docID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid document id"))
		return
	}

	doc, err := th.Users.PullVerificationDoc(r.Context(), self.ID, docID)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("document not found"))
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to remove document", err))
		return
	}

	if doc.StorageKey != "" && h.Files != nil {
		if err := h.Files.Delete(r.Context(), doc.StorageKey); err != nil {
			h.Log.Warn("failed to delete stored document",
				zap.String("key", doc.StorageKey), zap.Error(err))
		}
	}

	httpx.OKMessage(w, "document removed", nil)
}

// currentEducator loads the caller's own educator record.
func (h *Handler) currentEducator(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.OrgUser, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, models.OrgUser{}, false
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return nil, models.OrgUser{}, false
	}
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
		return nil, models.OrgUser{}, false
	}
	self, err := th.Users.GetByID(r.Context(), oid)
	if err == orguserstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("educator not found"))
		return nil, models.OrgUser{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load educator", err))
		return nil, models.OrgUser{}, false
	}
	if !self.IsEducator() {
		httpx.Error(w, h.Log, apperr.Forbidden("educator account required").WithCode("FORBIDDEN"))
		return nil, models.OrgUser{}, false
	}
	return th, self, true
}
