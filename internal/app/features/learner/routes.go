// internal/app/features/learner/routes.go
package learner

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Routes wires the learner-facing catalog and enrollment views. selfEnroll
// is the batch self-enrollment handler, provided by the batches feature so
// it lives next to the staff enrollment logic.
func Routes(h *Handler, selfEnroll http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleLearner))

	r.Get("/courses", h.Catalog)
	r.Get("/courses/{courseID}", h.CatalogCourse)
	r.Get("/enrollments", h.MyEnrollments)
	r.Get("/batches", h.MyBatches)
	r.Post("/batches/{batchID}/enroll", selfEnroll)
	return r
}
