package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/token"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

func newVerifier() (*auth.Verifier, *token.Codec) {
	codec := token.NewCodec("test-secret-key", time.Hour)
	return &auth.Verifier{Codec: codec, Log: zap.NewNop()}, codec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadIdentity_ValidToken(t *testing.T) {
	v, codec := newVerifier()

	signed, err := codec.Sign("user-1", models.RoleAdmin, "org-1", "acme_academy", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var got *auth.Identity
	handler := v.LoadIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentIdentity(r)
	}))

	req := httptest.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected identity in context")
	}
	if got.UserID != "user-1" || got.Role != models.RoleAdmin || got.DBName != "acme_academy" {
		t.Errorf("identity = %+v", got)
	}
}

func TestLoadIdentity_NoHeader_PassesThroughAnonymously(t *testing.T) {
	v, _ := newVerifier()

	called := false
	handler := v.LoadIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentIdentity(r); ok {
			t.Error("expected no identity for anonymous request")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("expected anonymous request to pass through")
	}
}

func TestLoadIdentity_BadToken_Returns401(t *testing.T) {
	v, _ := newVerifier()

	handler := v.LoadIdentity(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoadIdentity_ExpiredToken_Returns401(t *testing.T) {
	v, _ := newVerifier()
	expired, err := token.NewCodec("test-secret-key", -time.Minute).Sign("user-1", models.RoleLearner, "", "", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	handler := v.LoadIdentity(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := auth.RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := auth.WithIdentity(httptest.NewRequest("GET", "/", nil), &auth.Identity{UserID: "u", Role: models.RoleLearner})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated: status = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := auth.RequireRole(models.RoleAdmin, models.RoleSubOrgAdmin)(okHandler())

	tests := []struct {
		name string
		id   *auth.Identity
		want int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"allowed admin", &auth.Identity{UserID: "u", Role: models.RoleAdmin}, http.StatusOK},
		{"allowed sub-org admin", &auth.Identity{UserID: "u", Role: models.RoleSubOrgAdmin}, http.StatusOK},
		{"wrong role", &auth.Identity{UserID: "u", Role: models.RoleLearner}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.id != nil {
				req = auth.WithIdentity(req, tt.id)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
