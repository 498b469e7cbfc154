// internal/app/features/educators/routes.go
package educators

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// AdminRoutes wires the verification review endpoints for admins and
// sub-org admins.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSubOrgAdmin))

	r.Get("/", h.List)
	r.Route("/{educatorID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/documents", h.Documents)
		r.Post("/approve", h.Approve)
		r.Post("/reject", h.Reject)
	})
	return r
}

// SelfRoutes wires the educator-facing profile and verification
// endpoints.
func SelfRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleEducator))

	r.Patch("/profile", h.UpdateOwnProfile)
	r.Get("/verification", h.Verification)
	r.Post("/verification/documents", h.UploadOwnDocuments)
	r.Delete("/verification/documents/{docID}", h.DeleteOwnDocument)
	return r
}
