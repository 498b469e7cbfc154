// internal/app/features/learner/handler.go
package learner

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	batchstore "github.com/dalemusser/coursedeck/internal/app/store/batches"
	coursestore "github.com/dalemusser/coursedeck/internal/app/store/courses"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves the learner's own view: the published course catalog
// and their enrollments.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// Catalog handles GET /learner/courses: published courses only.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}

	filter := bson.M{"status": models.CoursePublished}
	if cat := normalize.QueryParam(r.URL.Query().Get("category")); cat != "" {
		filter["category"] = cat
	}
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		filter["title_ci"] = bson.M{"$regex": text.Fold(q)}
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(p.Offset).
		SetLimit(p.Limit)

	list, err := th.Courses.Find(r.Context(), filter, opts)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list courses", err))
		return
	}
	total, err := th.Courses.Count(r.Context(), filter)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to count courses", err))
		return
	}
	httpx.OK(w, catalogResponse{Courses: list, Total: total})
}

// CatalogCourse handles GET /learner/courses/{courseID}: one published
// course with its curriculum.
func (h *Handler) CatalogCourse(w http.ResponseWriter, r *http.Request) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid course id"))
		return
	}
	course, err := th.Courses.GetByID(r.Context(), oid)
	if err == coursestore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load course", err))
		return
	}
	// Drafts and archived courses stay invisible to learners.
	if course.Status != models.CoursePublished {
		httpx.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}
	httpx.OK(w, course)
}

// MyEnrollments handles GET /learner/enrollments: the caller's
// enrollments newest first, each with its batch and course attached when
// they still exist.
func (h *Handler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	th, learnerID, ok := h.tenantAndLearner(w, r)
	if !ok {
		return
	}

	enrollments, err := th.Enrollments.ListByLearner(r.Context(), learnerID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list enrollments", err))
		return
	}

	views := make([]enrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		v := enrollmentView{Enrollment: e}
		b, err := th.Batches.GetByID(r.Context(), e.BatchID)
		if err == nil {
			v.Batch = &b
			if courseID, err := primitive.ObjectIDFromHex(b.CourseID); err == nil {
				if c, err := th.Courses.GetByID(r.Context(), courseID); err == nil {
					v.Course = &c
				}
			}
		} else if err != batchstore.ErrNotFound {
			httpx.Error(w, h.Log, apperr.Internal("failed to load batch", err))
			return
		}
		views = append(views, v)
	}
	httpx.OK(w, views)
}

// MyBatches handles GET /learner/batches: batches the caller holds an
// active enrollment in.
func (h *Handler) MyBatches(w http.ResponseWriter, r *http.Request) {
	th, learnerID, ok := h.tenantAndLearner(w, r)
	if !ok {
		return
	}

	enrollments, err := th.Enrollments.ListByLearner(r.Context(), learnerID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list enrollments", err))
		return
	}

	batches := make([]models.Batch, 0, len(enrollments))
	for _, e := range enrollments {
		if !e.Active() {
			continue
		}
		b, err := th.Batches.GetByID(r.Context(), e.BatchID)
		if err == batchstore.ErrNotFound {
			continue
		}
		if err != nil {
			httpx.Error(w, h.Log, apperr.Internal("failed to load batch", err))
			return
		}
		batches = append(batches, b)
	}
	httpx.OK(w, batches)
}

func (h *Handler) tenantAndLearner(w http.ResponseWriter, r *http.Request) (*tenant.Handle, primitive.ObjectID, bool) {
	th, ok := tenant.FromRequest(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Internal("tenant not resolved", nil).WithCode("TENANT_RESOLVE_ERROR"))
		return nil, primitive.NilObjectID, false
	}
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		httpx.Error(w, h.Log, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
		return nil, primitive.NilObjectID, false
	}
	learnerID, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
		return nil, primitive.NilObjectID, false
	}
	return th, learnerID, true
}
