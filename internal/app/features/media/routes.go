// internal/app/features/media/routes.go
package media

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Routes wires branding uploads. Only tenant admins may change the logo.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Post("/logo", h.UploadLogo)
	return r
}
