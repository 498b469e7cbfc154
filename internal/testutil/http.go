package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuperAdminIdentity returns an identity for master-plane handler tests.
func SuperAdminIdentity() *auth.Identity {
	return &auth.Identity{
		UserID: primitive.NewObjectID().Hex(),
		Role:   "superadmin",
	}
}

// AdminIdentity returns a tenant admin identity bound to dbName.
func AdminIdentity(dbName string) *auth.Identity {
	return &auth.Identity{
		UserID: primitive.NewObjectID().Hex(),
		Role:   "admin",
		OrgID:  primitive.NewObjectID().Hex(),
		DBName: dbName,
	}
}

// EducatorIdentity returns a tenant educator identity bound to dbName.
func EducatorIdentity(dbName string, userID primitive.ObjectID) *auth.Identity {
	return &auth.Identity{
		UserID: userID.Hex(),
		Role:   "educator",
		OrgID:  primitive.NewObjectID().Hex(),
		DBName: dbName,
	}
}

// LearnerIdentity returns a tenant learner identity bound to dbName.
func LearnerIdentity(dbName string, userID primitive.ObjectID) *auth.Identity {
	return &auth.Identity{
		UserID: userID.Hex(),
		Role:   "learner",
		OrgID:  primitive.NewObjectID().Hex(),
		DBName: dbName,
	}
}

// WithIdentity injects an identity into the request context for testing
// authenticated handlers, bypassing the token middleware.
func WithIdentity(r *http.Request, id *auth.Identity) *http.Request {
	return auth.WithIdentity(r, id)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
