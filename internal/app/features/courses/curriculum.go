// internal/app/features/courses/curriculum.go
package courses

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	lessonstore "github.com/dalemusser/coursedeck/internal/app/store/courselessons"
	sectionstore "github.com/dalemusser/coursedeck/internal/app/store/coursesections"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Curriculum handles GET /courses/{courseID}/curriculum: every section
// in order with its lessons inlined.
func (h *Handler) Curriculum(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	sections, err := th.Sections.ListByCourse(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list sections", err))
		return
	}
	lessons, err := th.Lessons.ListByCourse(r.Context(), course.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to list lessons", err))
		return
	}

	bySection := make(map[primitive.ObjectID][]models.CourseLesson)
	for _, l := range lessons {
		bySection[l.SectionID] = append(bySection[l.SectionID], l)
	}
	views := make([]sectionView, 0, len(sections))
	for _, sec := range sections {
		views = append(views, sectionView{CourseSection: sec, Lessons: bySection[sec.ID]})
	}
	httpx.OK(w, views)
}

// CreateSection handles POST /courses/{courseID}/sections.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	var req sectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	title := normalize.Name(req.Title)
	if title == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("title is required"))
		return
	}

	sec, err := th.Sections.Create(r.Context(), models.CourseSection{
		CourseID:    course.ID,
		Title:       title,
		Description: normalize.QueryParam(req.Description),
	})
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to create section", err))
		return
	}
	httpx.Created(w, sec)
}

// UpdateSection handles PATCH /courses/{courseID}/sections/{sectionID}.
// Order is assigned at creation and cannot be changed here.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	th, sec, ok := h.sectionFromPath(w, r)
	if !ok {
		return
	}

	var req sectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	update := models.CourseSection{
		Title:       normalize.Name(req.Title),
		Description: normalize.QueryParam(req.Description),
	}
	if err := th.Sections.Update(r.Context(), sec.ID, update); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update section", err))
		return
	}
	updated, err := th.Sections.GetByID(r.Context(), sec.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload section", err))
		return
	}
	httpx.OK(w, updated)
}

// DeleteSection handles DELETE /courses/{courseID}/sections/{sectionID}.
// Lessons in the section go with it; remaining sections keep their order
// numbers, so gaps are expected.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	th, sec, ok := h.sectionFromPath(w, r)
	if !ok {
		return
	}
	if _, err := th.Lessons.DeleteBySection(r.Context(), sec.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete lessons", err))
		return
	}
	if _, err := th.Sections.Delete(r.Context(), sec.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete section", err))
		return
	}
	httpx.OKMessage(w, "section deleted", nil)
}

// CreateLesson handles POST /courses/{courseID}/sections/{sectionID}/lessons.
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	th, sec, ok := h.sectionFromPath(w, r)
	if !ok {
		return
	}

	var req lessonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	title := normalize.Name(req.Title)
	if title == "" {
		httpx.Error(w, h.Log, apperr.BadRequest("title is required"))
		return
	}
	switch req.Type {
	case models.LessonVideo, models.LessonPDF, models.LessonText:
	default:
		httpx.Error(w, h.Log, apperr.BadRequest("invalid lesson type"))
		return
	}
	if req.VideoURL != "" && req.VideoUploadKey != "" {
		httpx.Error(w, h.Log, apperr.BadRequest("videoUrl and videoUploadKey are mutually exclusive"))
		return
	}
	source, err := lessonVideoSource(req)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	l := models.CourseLesson{
		CourseID:       sec.CourseID,
		SectionID:      sec.ID,
		Title:          title,
		Type:           req.Type,
		VideoSource:    source,
		VideoURL:       normalize.QueryParam(req.VideoURL),
		VideoUploadKey: normalize.QueryParam(req.VideoUploadKey),
		TextContent:    htmlsanitize.Sanitize(req.TextContent),
		ResourceURL:    normalize.QueryParam(req.ResourceURL),
	}
	if req.DurationMinutes != nil {
		l.DurationMinutes = *req.DurationMinutes
	}
	if req.IsPreview != nil {
		l.IsPreview = *req.IsPreview
	}

	created, err := th.Lessons.Create(r.Context(), l)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to create lesson", err))
		return
	}
	httpx.Created(w, created)
}

// UpdateLesson handles PATCH /courses/{courseID}/lessons/{lessonID}.
// Setting one video source clears the other.
func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	th, lesson, ok := h.lessonFromPath(w, r)
	if !ok {
		return
	}

	var req lessonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	if req.VideoURL != "" && req.VideoUploadKey != "" {
		httpx.Error(w, h.Log, apperr.BadRequest("videoUrl and videoUploadKey are mutually exclusive"))
		return
	}
	source, err := lessonVideoSource(req)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	unset := bson.M{}
	if t := normalize.Name(req.Title); t != "" {
		set["title"] = t
	}
	if req.VideoURL != "" {
		set["video_url"] = normalize.QueryParam(req.VideoURL)
		set["video_source"] = source
		unset["video_upload_key"] = ""
	}
	if req.VideoUploadKey != "" {
		set["video_upload_key"] = normalize.QueryParam(req.VideoUploadKey)
		set["video_source"] = models.VideoSourceUpload
		unset["video_url"] = ""
	}
	if req.DurationMinutes != nil {
		set["duration_minutes"] = *req.DurationMinutes
	}
	if req.TextContent != "" {
		set["text_content"] = htmlsanitize.Sanitize(req.TextContent)
	}
	if req.ResourceURL != "" {
		set["resource_url"] = normalize.QueryParam(req.ResourceURL)
	}
	if req.IsPreview != nil {
		set["is_preview"] = *req.IsPreview
	}
	if len(set) == 0 && len(unset) == 0 {
		httpx.OK(w, lesson)
		return
	}

	if err := th.Lessons.Update(r.Context(), lesson.ID, set, unset); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update lesson", err))
		return
	}
	updated, err := th.Lessons.GetByID(r.Context(), lesson.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload lesson", err))
		return
	}
	httpx.OK(w, updated)
}

// DeleteLesson handles DELETE /courses/{courseID}/lessons/{lessonID}.
func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	th, lesson, ok := h.lessonFromPath(w, r)
	if !ok {
		return
	}
	if _, err := th.Lessons.Delete(r.Context(), lesson.ID); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to delete lesson", err))
		return
	}
	if lesson.VideoUploadKey != "" && h.Files != nil {
		if err := h.Files.Delete(r.Context(), lesson.VideoUploadKey); err != nil {
			h.Log.Warn("failed to delete lesson video",
				zap.String("key", lesson.VideoUploadKey), zap.Error(err))
		}
	}
	httpx.OKMessage(w, "lesson deleted", nil)
}

// lessonVideoSource resolves the videoSource for a lesson request. An
// upload key forces "upload"; an external URL keeps the requested source
// or defaults to "youtube" when none is given.
func lessonVideoSource(req lessonRequest) (string, error) {
	if req.VideoUploadKey != "" {
		return models.VideoSourceUpload, nil
	}
	switch req.VideoSource {
	case "":
		if req.VideoURL != "" {
			return models.VideoSourceYouTube, nil
		}
		return "", nil
	case models.VideoSourceYouTube, models.VideoSourceSharePoint:
		return req.VideoSource, nil
	case models.VideoSourceUpload:
		return "", apperr.BadRequest("videoSource upload requires videoUploadKey")
	default:
		return "", apperr.BadRequest("invalid video source")
	}
}

// sectionFromPath loads the section named by the sectionID URL parameter
// after courseFromPath's ownership checks, and verifies the section
// belongs to the course in the path.
func (h *Handler) sectionFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.CourseSection, bool) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return nil, models.CourseSection{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sectionID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid section id"))
		return nil, models.CourseSection{}, false
	}
	sec, err := th.Sections.GetByID(r.Context(), oid)
	if err == sectionstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("section not found"))
		return nil, models.CourseSection{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load section", err))
		return nil, models.CourseSection{}, false
	}
	if sec.CourseID != course.ID {
		httpx.Error(w, h.Log, apperr.NotFound("section not found"))
		return nil, models.CourseSection{}, false
	}
	return th, sec, true
}

// lessonFromPath loads the lesson named by the lessonID URL parameter
// after courseFromPath's ownership checks, and verifies the lesson
// belongs to the course in the path.
func (h *Handler) lessonFromPath(w http.ResponseWriter, r *http.Request) (*tenant.Handle, models.CourseLesson, bool) {
	th, course, ok := h.courseFromPath(w, r)
	if !ok {
		return nil, models.CourseLesson{}, false
	}
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "lessonID"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid lesson id"))
		return nil, models.CourseLesson{}, false
	}
	lesson, err := th.Lessons.GetByID(r.Context(), oid)
	if err == lessonstore.ErrNotFound {
		httpx.Error(w, h.Log, apperr.NotFound("lesson not found"))
		return nil, models.CourseLesson{}, false
	}
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to load lesson", err))
		return nil, models.CourseLesson{}, false
	}
	if lesson.CourseID != course.ID {
		httpx.Error(w, h.Log, apperr.NotFound("lesson not found"))
		return nil, models.CourseLesson{}, false
	}
	return th, lesson, true
}
