// internal/app/features/courses/routes.go
package courses

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Routes wires course and curriculum management for admins and
// educators. Educators are restricted to their own courses by the
// handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSubOrgAdmin, models.RoleEducator))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/publish", h.Publish)
		r.Post("/archive", h.Archive)

		r.Get("/curriculum", h.Curriculum)
		r.Post("/sections", h.CreateSection)
		r.Route("/sections/{sectionID}", func(r chi.Router) {
			r.Patch("/", h.UpdateSection)
			r.Delete("/", h.DeleteSection)
			r.Post("/lessons", h.CreateLesson)
		})
		r.Route("/lessons/{lessonID}", func(r chi.Router) {
			r.Patch("/", h.UpdateLesson)
			r.Delete("/", h.DeleteLesson)
			r.Post("/video", h.UploadLessonVideo)
		})
	})
	return r
}
