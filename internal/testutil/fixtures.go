package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a master-database organization record with the
// given name, slug, and tenant database name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name, slug, dbName string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      slug,
		DBName:    dbName,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateOrgUser creates a tenant user with the given role. passwordHash may
// be empty for users that never log in during the test.
func (f *Fixtures) CreateOrgUser(ctx context.Context, name, email, role, passwordHash string) models.OrgUser {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.OrgUser{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("org_users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateSubOrg creates a tenant sub-organization.
func (f *Fixtures) CreateSubOrg(ctx context.Context, name string) models.SubOrg {
	f.t.Helper()

	now := time.Now().UTC()
	so := models.SubOrg{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("sub_orgs").InsertOne(ctx, so); err != nil {
		f.t.Fatalf("failed to create test sub-org: %v", err)
	}
	return so
}

// CreateCourse creates a tenant course in the given status.
func (f *Fixtures) CreateCourse(ctx context.Context, title, status string) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	course := models.Course{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

// CreateBatch creates a batch in the given status with the given capacity.
// maxLearners 0 means unlimited.
func (f *Fixtures) CreateBatch(ctx context.Context, name, courseID, status string, maxLearners int) models.Batch {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Batch{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		CourseID:    courseID,
		Status:      status,
		MaxLearners: maxLearners,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("batches").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test batch: %v", err)
	}
	return b
}

// CreateEnrollment creates an enrollment record in the given status.
func (f *Fixtures) CreateEnrollment(ctx context.Context, batchID, learnerID primitive.ObjectID, status string) models.Enrollment {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Enrollment{
		ID:         primitive.NewObjectID(),
		BatchID:    batchID,
		LearnerID:  learnerID,
		Status:     status,
		EnrolledAt: now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("enrollments").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test enrollment: %v", err)
	}
	return e
}
