// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the login endpoints, mounted under /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/superadmin/login", h.SuperAdminLogin)
	r.Post("/admin/login", h.AdminLogin)
	r.Post("/login", h.Login)
	return r
}
