// internal/app/tenant/context.go
package tenant

import (
	"context"
	"net/http"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"go.uber.org/zap"
)

type ctxKey string

const handleKey ctxKey = "tenantHandle"

// WithHandle returns a context carrying the tenant handle.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey, h)
}

// FromContext returns the tenant handle and a found flag.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey).(*Handle)
	return h, ok
}

// FromRequest returns the tenant handle from the request context.
func FromRequest(r *http.Request) (*Handle, bool) {
	return FromContext(r.Context())
}

// Middleware resolves the caller's tenant database from their identity and
// injects the handle into the request context. It must run after the auth
// middleware. Callers without a tenant binding (e.g. superadmin tokens)
// are rejected.
func (r *Registry) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id, ok := auth.CurrentIdentity(req)
			if !ok {
				httpx.Error(w, logger, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
				return
			}
			h, err := r.Resolve(req.Context(), id.DBName)
			if err != nil {
				httpx.Error(w, logger, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithHandle(req.Context(), h)))
		})
	}
}
