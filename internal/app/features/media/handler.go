// internal/app/features/media/handler.go
package media

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/media"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
)

// Handler serves tenant branding asset uploads.
type Handler struct {
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Files: files, Log: logger}
}

type logoResponse struct {
	LogoURL string `json:"logoUrl"`
	LogoKey string `json:"logoKey"`
}

// UploadLogo handles POST /admin/media/logo. The multipart field "logo"
// replaces the tenant's logo in its settings document; the previous
// stored file is removed best effort.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
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
	if h.Files == nil {
		httpx.Error(w, h.Log, apperr.Internal("file storage is not configured", nil))
		return
	}

	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.Error(w, h.Log, apperr.BadRequest("logo file is required"))
		return
	}
	defer file.Close()

	info, err := media.Upload(r.Context(), h.Files, "logos", header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to store logo", err))
		return
	}

	previous, _ := th.Settings.Get(r.Context())

	var updatedBy *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(id.UserID); err == nil {
		updatedBy = &oid
	}
	updated, err := th.Settings.UpdateBranding(r.Context(), bson.M{
		"logo_url": info.URL,
		"logo_key": info.Key,
	}, updatedBy)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Internal("failed to update branding", err))
		return
	}

	if previous.Branding.LogoKey != "" && previous.Branding.LogoKey != info.Key {
		if err := h.Files.Delete(r.Context(), previous.Branding.LogoKey); err != nil {
			h.Log.Warn("failed to delete replaced logo",
				zap.String("key", previous.Branding.LogoKey), zap.Error(err))
		}
	}

	httpx.OK(w, logoResponse{
		LogoURL: updated.Branding.LogoURL,
		LogoKey: updated.Branding.LogoKey,
	})
}
