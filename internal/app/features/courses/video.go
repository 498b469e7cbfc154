// internal/app/features/courses/video.go
package courses

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/media"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// UploadLessonVideo handles POST /courses/{courseID}/lessons/{lessonID}/video.
// The multipart field "video" replaces the lesson's stored video; any
// external video URL on the lesson is cleared.
func (h *Handler) UploadLessonVideo(w http.ResponseWriter, r *http.Request) {
	th, lesson, ok := h.lessonFromPath(w, r)
	if !ok {
		return
	}
	if lesson.Type != models.LessonVideo {
		httpx.Error(w, h.Log, apperr.BadRequest("lesson is not a video lesson"))
		return
	}
	if h.Files == nil {
		httpx.Error(w, h.Log, apperr.Internal("file storage is not configured", nil))
		return
	}

	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("video file is required"))
		return
	}
	defer file.Close()

	info, err := media.Upload(r.Context(), h.Files, "lessons", header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to store video", err))
		return
	}

	set := bson.M{"video_upload_key": info.Key, "video_source": models.VideoSourceUpload}
	unset := bson.M{"video_url": ""}
	if err := th.Lessons.Update(r.Context(), lesson.ID, set, unset); err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update lesson", err))
		return
	}

	// A replaced upload leaves its old file behind; clean it up without
	// failing the request.
	if lesson.VideoUploadKey != "" && lesson.VideoUploadKey != info.Key {
		if err := h.Files.Delete(r.Context(), lesson.VideoUploadKey); err != nil {
			h.Log.Warn("failed to delete replaced lesson video",
				zap.String("key", lesson.VideoUploadKey), zap.Error(err))
		}
	}

	updated, err := th.Lessons.GetByID(r.Context(), lesson.ID)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to reload lesson", err))
		return
	}
	httpx.OK(w, updated)
}
