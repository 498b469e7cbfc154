// internal/app/features/batches/enroll.go
package batches

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	enrollmentstore "github.com/dalemusser/coursedeck/internal/app/store/enrollments"
	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/timeouts"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Enroll handles POST /batches/{batchID}/enroll: a staff member places
// one learner in the batch. Staff enrollments are confirmed immediately.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	learnerID, err := primitive.ObjectIDFromHex(req.LearnerID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid learnerId"))
		return
	}

	id, _ := auth.CurrentIdentity(r)
	e, err := h.enrollOne(r, th, b, learnerID, models.EnrollmentConfirmed, models.EnrollmentSourceAdmin, req.enrollTerms, id)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Created(w, e)
}

// SelfEnroll handles POST /learner/batches/{batchID}/enroll: the calling
// learner takes a seat. Self enrollments start out pending.
func (h *Handler) SelfEnroll(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return
	}
	learnerID, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
		return
	}

	e, err := h.enrollOne(r, th, b, learnerID, models.EnrollmentPending, models.EnrollmentSourceSelf, enrollTerms{}, id)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Created(w, e)
}

// BulkEnroll handles POST /batches/{batchID}/enroll/bulk. Learners are
// processed in order; the response reports a per-learner outcome and the
// call as a whole succeeds even when some learners are skipped. Capacity
// is tracked with a running counter so a batch never oversubscribes
// within one request.
func (h *Handler) BulkEnroll(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}

	var req bulkEnrollRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	if len(req.LearnerIDs) == 0 {
		httpx.Error(w, h.Log, apperr.BadRequest("learnerIds is required"))
		return
	}
	if !b.OpenForEnrollment() {
		httpx.Error(w, h.Log, apperr.BadRequest("batch is not open for enrollment"))
		return
	}

	// Large rosters outlive the default request deadline.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch)
	defer cancel()
	r = r.WithContext(ctx)

	id, _ := auth.CurrentIdentity(r)
	var enrolledBy *primitive.ObjectID
	if id != nil {
		if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
			enrolledBy = &oid
		}
	}

	seats := b.EnrolledCount
	results := make([]bulkEnrollResult, 0, len(req.LearnerIDs))
	for _, raw := range req.LearnerIDs {
		res := bulkEnrollResult{LearnerID: raw, Status: "error"}

		learnerID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			res.Message = "invalid learner id"
			results = append(results, res)
			continue
		}
		if b.MaxLearners > 0 && seats >= b.MaxLearners {
			res.Message = "Batch is full"
			results = append(results, res)
			continue
		}
		learner, err := h.lookupLearner(r, th, learnerID)
		if err != nil {
			res.Message = "Learner not found"
			results = append(results, res)
			continue
		}
		dup, err := th.Enrollments.HasActive(r.Context(), b.ID, learnerID)
		if err != nil {
			res.Message = "enrollment check failed"
			results = append(results, res)
			continue
		}
		if dup {
			res.Message = "Learner is already enrolled in this batch"
			results = append(results, res)
			continue
		}

		e, err := th.Enrollments.Create(r.Context(), models.Enrollment{
			BatchID:    b.ID,
			LearnerID:  learnerID,
			SubOrgID:   enrollmentSubOrg(b, learner),
			Status:     models.EnrollmentConfirmed,
			Source:     models.EnrollmentSourceAdmin,
			StartDate:  req.StartDate,
			ExpiryDate: req.ExpiryDate,
			Notes:      req.Notes,
			EnrolledBy: enrolledBy,
		})
		if err != nil {
			res.Message = "enrollment failed"
			results = append(results, res)
			continue
		}
		if err := th.Batches.IncEnrolled(r.Context(), b.ID, 1); err != nil {
			h.Log.Warn("failed to bump enrolled count",
				zap.String("batch_id", b.ID.Hex()), zap.Error(err))
		}
		seats++
		res.Status = "success"
		res.Message = ""
		res.EnrollmentID = e.ID.Hex()
		results = append(results, res)
	}

	resp := bulkEnrollResponse{
		BatchID: b.ID.Hex(),
		Total:   len(results),
		Results: results,
	}
	for _, res := range results {
		if res.Status == "success" {
			resp.SuccessCount++
		}
	}
	resp.FailureCount = resp.Total - resp.SuccessCount
	httpx.OK(w, resp)
}

// ListEnrollments handles GET /batches/{batchID}/enrollments.
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}
	list, err := th.Enrollments.ListByBatch(r.Context(), b.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list enrollments", err))
		return
	}
	httpx.OK(w, list)
}

// CancelEnrollment handles POST /batches/{batchID}/enrollments/{enrollmentID}/cancel.
// Cancelling an active enrollment frees the seat.
func (h *Handler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	th, b, ok := h.batchFromPath(w, r)
	if !ok {
		return
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "enrollmentID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid enrollment id"))
		return
	}
	e, err := th.Enrollments.GetByID(r.Context(), oid)
	if err == enrollmentstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("enrollment not found"))
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load enrollment", err))
		return
	}
	if e.BatchID != b.ID {
		httpx.Error(w, h.Log, apperr.NotFound("enrollment not found"))
		return
	}
	if e.Status == models.EnrollmentCancelled {
		httpx.OK(w, e)
		return
	}
	wasActive := e.Active()

	if err := th.Enrollments.SetStatus(r.Context(), e.ID, models.EnrollmentCancelled); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to cancel enrollment", err))
		return
	}
	if wasActive {
		if err := th.Batches.IncEnrolled(r.Context(), b.ID, -1); err != nil {
			h.Log.Warn("failed to release seat",
				zap.String("batch_id", b.ID.Hex()), zap.Error(err))
		}
	}
	updated, err := th.Enrollments.GetByID(r.Context(), e.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload enrollment", err))
		return
	}
	httpx.OK(w, updated)
}

// enrollOne applies the shared enrollment gates. The enrolled counter is
// bumped after the insert; without multi-document transactions a crash in
// between leaves the counter one low, which Reconcile-style cleanup can
// repair later.
func (h *Handler) enrollOne(r *http.Request, th *tenant.Handle, b models.Batch, learnerID primitive.ObjectID, status, source string, terms enrollTerms, id *auth.Identity) (models.Enrollment, error) {
	if !b.OpenForEnrollment() {
		return models.Enrollment{}, apperr.BadRequest("batch is not open for enrollment")
	}
	if !b.HasCapacity() {
		return models.Enrollment{}, apperr.Conflict("Batch is full")
	}
	learner, err := h.lookupLearner(r, th, learnerID)
	if err != nil {
		return models.Enrollment{}, err
	}
	dup, err := th.Enrollments.HasActive(r.Context(), b.ID, learnerID)
	if err != nil {
		return models.Enrollment{}, apperr.Internal("failed to check enrollment", err)
	}
	if dup {
		return models.Enrollment{}, apperr.Conflict("Learner is already enrolled in this batch")
	}

	e := models.Enrollment{
		BatchID:    b.ID,
		LearnerID:  learnerID,
		SubOrgID:   enrollmentSubOrg(b, learner),
		Status:     status,
		Source:     source,
		StartDate:  terms.StartDate,
		ExpiryDate: terms.ExpiryDate,
		Notes:      terms.Notes,
	}
	if id != nil {
		if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
			e.EnrolledBy = &oid
		}
	}
	created, err := th.Enrollments.Create(r.Context(), e)
	if err != nil {
		return models.Enrollment{}, apperr.Internal("failed to create enrollment", err)
	}
	if err := th.Batches.IncEnrolled(r.Context(), b.ID, 1); err != nil {
		h.Log.Warn("failed to bump enrolled count",
			zap.String("batch_id", b.ID.Hex()), zap.Error(err))
	}
	return created, nil
}

// lookupLearner confirms the enrollment target exists and holds the
// learner role before any seat is taken.
func (h *Handler) lookupLearner(r *http.Request, th *tenant.Handle, learnerID primitive.ObjectID) (models.OrgUser, error) {
	u, err := th.Users.GetByID(r.Context(), learnerID)
	if err == orguserstore.ErrNotFound {
		return models.OrgUser{}, apperr.NotFound("Learner not found")
	}
	if err != nil {
		return models.OrgUser{}, apperr.Internal("failed to load learner", err)
	}
	if u.Role != models.RoleLearner {
		return models.OrgUser{}, apperr.NotFound("Learner not found")
	}
	return u, nil
}

// enrollmentSubOrg picks the sub-org recorded on the enrollment: the
// batch's when pinned, otherwise the learner's own.
func enrollmentSubOrg(b models.Batch, learner models.OrgUser) *primitive.ObjectID {
	if b.SubOrgID != nil {
		return b.SubOrgID
	}
	return learner.SubOrgID
}
