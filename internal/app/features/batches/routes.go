// internal/app/features/batches/routes.go
package batches

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// StaffRoutes wires batch management for admins, sub-org admins, and
// educators.
func StaffRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSubOrgAdmin, models.RoleEducator))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{batchID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/enroll", h.Enroll)
		r.Post("/enroll/bulk", h.BulkEnroll)
		r.Get("/enrollments", h.ListEnrollments)
		r.Post("/enrollments/{enrollmentID}/cancel", h.CancelEnrollment)
	})
	return r
}
