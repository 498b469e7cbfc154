package tenant

import (
	"sync"
	"testing"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
	"github.com/dalemusser/coursedeck/internal/testutil"
)

func TestResolve_EmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := NewRegistry(db.Client())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := reg.Resolve(ctx, "")
	if apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for empty tenant name, got %v", err)
	}
}

func TestResolve_CachesHandle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := NewRegistry(db.Client())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h1, err := reg.Resolve(ctx, "acme_academy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	h2, err := reg.Resolve(ctx, "acme_academy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h1 != h2 {
		t.Error("expected the same handle for repeated resolution")
	}
	if h1.DBName != "acme_academy" {
		t.Errorf("DBName = %q", h1.DBName)
	}
	if h1.Users == nil || h1.Batches == nil || h1.Enrollments == nil {
		t.Error("expected stores to be initialized on the handle")
	}

	h3, err := reg.Resolve(ctx, "other_academy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h3 == h1 {
		t.Error("expected distinct handles for distinct tenants")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestResolve_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := NewRegistry(db.Client())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const workers = 32
	handles := make([]*Handle, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			h, err := reg.Resolve(ctx, "acme_academy")
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if handles[i] != handles[0] {
			t.Fatal("concurrent resolution produced different handles")
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestForget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := NewRegistry(db.Client())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h1, err := reg.Resolve(ctx, "acme_academy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	reg.Forget("acme_academy")

	h2, err := reg.Resolve(ctx, "acme_academy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h1 == h2 {
		t.Error("expected a fresh handle after Forget")
	}
}
