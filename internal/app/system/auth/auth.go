package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/app/system/httpx"
	"github.com/dalemusser/coursedeck/internal/app/system/token"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Identity & context                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// Identity is the authenticated caller extracted from a bearer token and
// injected into r.Context(). DBName routes tenant requests; it is empty for
// superadmins, who operate on the master database.
type Identity struct {
	UserID   string
	Role     string
	OrgID    string
	DBName   string
	SubOrgID string
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the caller's identity and a found flag.
func CurrentIdentity(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity returns a request whose context carries the identity.
// Exported for tests that build authenticated requests directly.
func WithIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Verifier holds the token codec and produces the auth middleware chain.
type Verifier struct {
	Codec *token.Codec
	Log   *zap.Logger
}

// LoadIdentity parses the Authorization header if present and injects the
// identity into context. Requests without a bearer token pass through
// anonymously; RequireAuth decides whether that is acceptable.
func (v *Verifier) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := v.Codec.Verify(raw)
		if err != nil {
			httpx.Error(w, v.Log, apperr.Unauthorized("invalid or expired token").WithCode("UNAUTHORIZED"))
			return
		}

		next.ServeHTTP(w, WithIdentity(r, &Identity{
			UserID:   claims.UserID,
			Role:     claims.Role,
			OrgID:    claims.OrgID,
			DBName:   claims.DBName,
			SubOrgID: claims.SubOrgID,
		}))
	})
}

// RequireAuth rejects requests with no identity in context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); !ok {
			httpx.Error(w, nil, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the caller holds one of the allowed roles. Missing
// identity is 401; wrong role is 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentIdentity(r)
			if !ok {
				httpx.Error(w, nil, apperr.Unauthorized("authentication required").WithCode("UNAUTHORIZED"))
				return
			}
			if _, has := set[id.Role]; !has {
				httpx.Error(w, nil, apperr.Forbidden("insufficient permissions").WithCode("FORBIDDEN"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
