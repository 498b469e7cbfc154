// internal/app/features/suborgs/routes.go
package suborgs

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Routes wires sub-organization management. Only tenant admins may
// reshape the sub-org tree; sub-org admins get reads scoped to their
// own sub-org by the handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSubOrgAdmin))

	r.Get("/", h.List)
	r.Get("/{subOrgID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Post("/", h.Create)
		r.Patch("/{subOrgID}", h.Update)
		r.Delete("/{subOrgID}", h.Delete)
	})
	return r
}
