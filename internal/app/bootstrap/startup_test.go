package bootstrap

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/coursedeck/internal/testutil"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestSeedSuperAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MasterDB: db}
	appCfg := AppConfig{
		SuperAdminName:     "Root Admin",
		SuperAdminEmail:    "Root@Example.com",
		SuperAdminPassword: "swordfish",
	}

	if err := seedSuperAdmin(ctx, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("seedSuperAdmin failed: %v", err)
	}

	var sa models.SuperAdmin
	err := db.Collection("super_admins").FindOne(ctx, bson.M{"email": "root@example.com"}).Decode(&sa)
	if err != nil {
		t.Fatalf("failed to find seeded super admin: %v", err)
	}

	if sa.Name != "Root Admin" {
		t.Errorf("expected name 'Root Admin', got %q", sa.Name)
	}
	if sa.Status != models.StatusActive {
		t.Errorf("expected status active, got %q", sa.Status)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sa.PasswordHash), []byte("swordfish")); err != nil {
		t.Errorf("seeded password hash does not match: %v", err)
	}
}

func TestSeedSuperAdmin_SkipsWhenUnconfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MasterDB: db}

	if err := seedSuperAdmin(ctx, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("seedSuperAdmin failed: %v", err)
	}

	n, err := db.Collection("super_admins").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no super admins, got %d", n)
	}
}

func TestSeedSuperAdmin_LeavesExistingAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MasterDB: db}
	appCfg := AppConfig{
		SuperAdminEmail:    "root@example.com",
		SuperAdminPassword: "first-password",
	}

	if err := seedSuperAdmin(ctx, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}

	// A restart with a different configured password must not touch the
	// existing account.
	appCfg.SuperAdminPassword = "rotated-password"
	if err := seedSuperAdmin(ctx, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	n, err := db.Collection("super_admins").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one super admin, got %d", n)
	}

	var sa models.SuperAdmin
	if err := db.Collection("super_admins").FindOne(ctx, bson.M{}).Decode(&sa); err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sa.PasswordHash), []byte("first-password")); err != nil {
		t.Errorf("original password hash was replaced: %v", err)
	}
}
