// internal/app/features/courses/handler.go
package courses

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	coursestore "github.com/dalemusser/coursedeck/internal/app/store/courses"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/system/paging"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Handler serves course management. Admins manage every course in the
// tenant; educators only their own.
type Handler struct {
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Files: files, Log: logger}
}

// List handles GET /courses. Filters: status, category, educatorId, q.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}

	filter := bson.M{}
	if status := normalize.Status(r.URL.Query().Get("status")); status != "" {
		filter["status"] = status
	}
	if cat := normalize.QueryParam(r.URL.Query().Get("category")); cat != "" {
		filter["category"] = cat
	}
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		filter["title_ci"] = bson.M{"$regex": text.Fold(q)}
	}
	if id.Role == models.RoleEducator {
		oid, err := primitive.ObjectIDFromHex(id.UserID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
			return
		}
		filter["educator_id"] = oid
	} else if eduParam := r.URL.Query().Get("educatorId"); eduParam != "" {
		oid, err := primitive.ObjectIDFromHex(eduParam)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid educatorId"))
			return
		}
		filter["educator_id"] = oid
	}

	p := paging.Parse(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
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
	httpx.OK(w, listResponse{Courses: list, Total: total})
}

// Create handles POST /courses. New courses always start as drafts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return
	}

	var req courseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	title := normalize.Name(req.Title)
	if title == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("title is required"))
		return
	}

	pricing, err := resolvePricing(req, models.CoursePricing{})
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	slug := normalize.Slug(req.Slug)
	if slug == "" {
		slug = normalize.Slug(title)
	}

	course := models.Course{
		Title:         title,
		Slug:          slug,
		Subtitle:      normalize.QueryParam(req.Subtitle),
		Description:   htmlsanitize.Sanitize(req.Description),
		Category:      normalize.QueryParam(req.Category),
		Subcategory:   normalize.QueryParam(req.Subcategory),
		Language:      normalize.QueryParam(req.Language),
		Level:         normalize.Status(req.Level),
		ThumbnailURL:  normalize.QueryParam(req.ThumbnailURL),
		PromoVideoURL: normalize.QueryParam(req.PromoVideoURL),
		Tags:          req.Tags,
		Outcomes:      req.Outcomes,
		Requirements:  req.Requirements,
		Pricing:       pricing,
	}
	if req.SEO != nil {
		course.SEO = *req.SEO
	}

	// Educators always own the courses they create. Admins may assign an
	// educator explicitly.
	if id.Role == models.RoleEducator {
		oid, err := primitive.ObjectIDFromHex(id.UserID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.Unauthorized("invalid identity").WithCode("UNAUTHORIZED"))
			return
		}
		course.EducatorID = &oid
	} else if req.EducatorID != "" {
		oid, err := primitive.ObjectIDFromHex(req.EducatorID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid educatorId"))
			return
		}
		course.EducatorID = &oid
	}
	if req.SubOrgID != "" {
		oid, err := primitive.ObjectIDFromHex(req.SubOrgID)
		if err != nil {
			httpx.Error(w, h.Log, apperr.BadRequest("invalid subOrgId"))
			return
		}
		course.SubOrgID = &oid
	}
	if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
		course.CreatedBy = &oid
	}

	created, err := th.Courses.Create(r.Context(), course)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to create course", err))
		return
	}
	httpx.Created(w, created)
}

// Get handles GET /courses/{courseID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	httpx.OK(w, course)
}

// Update handles PATCH /courses/{courseID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	var req courseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if t := normalize.Name(req.Title); t != "" {
		set["title"] = t
	}
	if req.Slug != "" {
		set["slug"] = normalize.Slug(req.Slug)
	}
	if req.Subtitle != "" {
		set["subtitle"] = normalize.QueryParam(req.Subtitle)
	}
	if req.Description != "" {
		set["description"] = htmlsanitize.Sanitize(req.Description)
	}
	if req.Category != "" {
		set["category"] = normalize.QueryParam(req.Category)
	}
	if req.Subcategory != "" {
		set["subcategory"] = normalize.QueryParam(req.Subcategory)
	}
	if req.Language != "" {
		set["language"] = normalize.QueryParam(req.Language)
	}
	if req.Level != "" {
		set["level"] = normalize.Status(req.Level)
	}
	if req.ThumbnailURL != "" {
		set["thumbnail_url"] = normalize.QueryParam(req.ThumbnailURL)
	}
	if req.PromoVideoURL != "" {
		set["promo_video_url"] = normalize.QueryParam(req.PromoVideoURL)
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.Outcomes != nil {
		set["outcomes"] = req.Outcomes
	}
	if req.Requirements != nil {
		set["requirements"] = req.Requirements
	}
	if req.SEO != nil {
		set["seo"] = *req.SEO
	}
	if hasPricingInput(req) {
		pricing, err := resolvePricing(req, course.Pricing)
		if err != nil {
			httpx.Error(w, h.Log, err)
			return
		}
		set["pricing"] = pricing
	}
	if len(set) == 0 {
		httpx.OK(w, course)
		return
	}

	if err := th.Courses.Update(r.Context(), course.ID, set); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update course", err))
		return
	}
	updated, err := th.Courses.GetByID(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload course", err))
		return
	}
	httpx.OK(w, updated)
}

// Publish handles POST /courses/{courseID}/publish. A course needs at
// least one lesson before it can go live.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	if course.Status == models.CoursePublished {
		httpx.OK(w, course)
		return
	}

	lessons, err := th.Lessons.ListByCourse(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load curriculum", err))
		return
	}
	if len(lessons) == 0 {
		httpx.Error(w, h.Log, apperr.BadRequest("course needs at least one lesson before publishing"))
		return
	}

	if err := th.Courses.SetStatus(r.Context(), course.ID, models.CoursePublished); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to publish course", err))
		return
	}
	updated, err := th.Courses.GetByID(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload course", err))
		return
	}
	httpx.OK(w, updated)
}

// Archive handles POST /courses/{courseID}/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	if err := th.Courses.SetStatus(r.Context(), course.ID, models.CourseArchived); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to archive course", err))
		return
	}
	updated, err := th.Courses.GetByID(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload course", err))
		return
	}
	httpx.OK(w, updated)
}

// Delete handles DELETE /courses/{courseID}. The curriculum is removed
// with the course.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	if _, err := th.Lessons.DeleteByCourse(r.Context(), course.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete lessons", err))
		return
	}
	if _, err := th.Sections.DeleteByCourse(r.Context(), course.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete sections", err))
		return
	}
	if _, err := th.Courses.Delete(r.Context(), course.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete course", err))
		return
	}
	httpx.OKMessage(w, "course deleted", nil)
}

// courseFromPath loads the course named by the courseID URL parameter
// and enforces ownership for educators.
func (h *Handler) courseFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.Course, bool) {
	th, id, ok := tenantAndIdentity(w, r, h.Log)
	if !ok {
		return nil, models.Course{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid course id"))
		return nil, models.Course{}, false
	}
	course, err := th.Courses.GetByID(r.Context(), oid)
	if err == coursestore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("course not found"))
		return nil, models.Course{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load course", err))
		return nil, models.Course{}, false
	}

	if id.Role == models.RoleEducator {
		if course.EducatorID == nil || course.EducatorID.Hex() != id.UserID {
			httpx.Error(w, h.Log, apperr.Forbidden("course belongs to another educator").WithCode("FORBIDDEN"))
			return nil, models.Course{}, false
		}
	}
	return th, course, true
}

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

func hasPricingInput(req courseRequest) bool {
	return req.Pricing != nil || req.IsFree != nil || req.Price != nil ||
		req.Currency != "" || req.DiscountPercentage != nil
}

// resolvePricing merges the request's pricing input over the current
// pricing block. The nested block takes precedence over the legacy flat
// fields, and a free course always carries a zero price.
func resolvePricing(req courseRequest, current models.CoursePricing) (models.CoursePricing, error) {
	p := current

	apply := func(in pricingRequest) {
		if in.IsFree != nil {
			p.IsFree = *in.IsFree
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Currency != "" {
			p.Currency = normalize.QueryParam(in.Currency)
		}
		if in.DiscountPercentage != nil {
			p.DiscountPercentage = *in.DiscountPercentage
		}
	}

	apply(pricingRequest{
		IsFree:             req.IsFree,
		Price:              req.Price,
		Currency:           req.Currency,
		DiscountPercentage: req.DiscountPercentage,
	})
	if req.Pricing != nil {
		apply(*req.Pricing)
	}

	if p.Price < 0 {
		return models.CoursePricing{}, apperr.BadRequest("price cannot be negative")
	}
	if p.DiscountPercentage < 0 || p.DiscountPercentage > 100 {
		return models.CoursePricing{}, apperr.BadRequest("discount percentage must be between 0 and 100")
	}
	if p.IsFree {
		p.Price = 0
		p.DiscountPercentage = 0
	}
	return p, nil
}
