package indexes_test

import (
	"testing"

	"github.com/dalemusser/coursedeck/internal/app/system/indexes"
	"github.com/dalemusser/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureMaster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureMaster should succeed on a clean database
	if err := indexes.EnsureMaster(ctx, db); err != nil {
		t.Fatalf("EnsureMaster failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := indexes.EnsureMaster(ctx, db); err != nil {
		t.Fatalf("Second EnsureMaster failed: %v", err)
	}
}

func TestEnsureTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant failed: %v", err)
	}
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("Second EnsureTenant failed: %v", err)
	}
}

func TestEnsureTenant_CreatesOrgUserIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant failed: %v", err)
	}

	cur, err := db.Collection("org_users").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	indexNames := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			indexNames[name] = true
		}
	}
	if !indexNames["uniq_orgusers_email"] {
		t.Errorf("missing unique email index, have %v", indexNames)
	}
	if !indexNames["idx_orgusers_role_verification"] {
		t.Errorf("missing verification queue index, have %v", indexNames)
	}
}
