// internal/app/tenant/registry.go
//
// Tenant connection registry. Every organization owns an isolated MongoDB
// database; the registry maps a tenant database name to a Handle bundling
// that database with its typed stores. Handles are created on first use
// and cached for the life of the process, so concurrent requests for the
// same tenant share one handle.
package tenant

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	batchstore "github.com/dalemusser/coursedeck/internal/app/store/batches"
	lessonstore "github.com/dalemusser/coursedeck/internal/app/store/courselessons"
	coursestore "github.com/dalemusser/coursedeck/internal/app/store/courses"
	sectionstore "github.com/dalemusser/coursedeck/internal/app/store/coursesections"
	educatordocstore "github.com/dalemusser/coursedeck/internal/app/store/educatordocs"
	enrollmentstore "github.com/dalemusser/coursedeck/internal/app/store/enrollments"
	orgsettingsstore "github.com/dalemusser/coursedeck/internal/app/store/orgsettings"
	orguserstore "github.com/dalemusser/coursedeck/internal/app/store/orgusers"
	suborgstore "github.com/dalemusser/coursedeck/internal/app/store/suborgs"
	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
)

// Handle is one tenant's database plus its typed stores. A Handle is safe
// for concurrent use and is shared by every request for the tenant.
type Handle struct {
	DBName string
	DB     *mongo.Database

	Users        *orguserstore.Store
	SubOrgs      *suborgstore.Store
	Settings     *orgsettingsstore.Store
	Courses      *coursestore.Store
	Sections     *sectionstore.Store
	Lessons      *lessonstore.Store
	Batches      *batchstore.Store
	Enrollments  *enrollmentstore.Store
	EducatorDocs *educatordocstore.Store
}

func newHandle(db *mongo.Database) *Handle {
	return &Handle{
		DBName:       db.Name(),
		DB:           db,
		Users:        orguserstore.New(db),
		SubOrgs:      suborgstore.New(db),
		Settings:     orgsettingsstore.New(db),
		Courses:      coursestore.New(db),
		Sections:     sectionstore.New(db),
		Lessons:      lessonstore.New(db),
		Batches:      batchstore.New(db),
		Enrollments:  enrollmentstore.New(db),
		EducatorDocs: educatordocstore.New(db),
	}
}

// Registry caches tenant handles keyed by database name. It leans on the
// driver's connection pooling: selecting a database off the shared client
// is cheap, so the cache exists to share store instances, not sockets.
type Registry struct {
	client *mongo.Client

	mu      sync.Mutex
	handles map[string]*Handle
}

func NewRegistry(client *mongo.Client) *Registry {
	return &Registry{
		client:  client,
		handles: make(map[string]*Handle),
	}
}

// Resolve returns the handle for dbName, creating and caching it on first
// use. An empty name is a client error: it means the caller's token has no
// tenant binding.
func (r *Registry) Resolve(ctx context.Context, dbName string) (*Handle, error) {
	if dbName == "" {
		return nil, apperr.BadRequest("no tenant database bound to this request").WithCode("TENANT_RESOLVE_ERROR")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[dbName]; ok {
		return h, nil
	}
	h := newHandle(r.client.Database(dbName))
	r.handles[dbName] = h
	return h, nil
}

// Forget drops a cached handle. Used after an organization is deleted so a
// re-provisioned tenant with the same name starts fresh.
func (r *Registry) Forget(dbName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, dbName)
}

// Len reports how many tenant handles are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
