// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	superadminstore "github.com/dalemusser/coursedeck/internal/app/store/superadmins"
	"github.com/dalemusser/coursedeck/internal/app/system/normalize"
	"github.com/dalemusser/coursedeck/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// CourseDeck seeds the first super admin account here so a fresh
// deployment can log in and provision its first organization without
// touching the database by hand.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return seedSuperAdmin(ctx, appCfg, deps, logger)
}

// seedSuperAdmin creates the bootstrap super admin when the collection is
// empty. An existing account with the configured email is left untouched,
// so password changes made through the app survive restarts.
func seedSuperAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	email := normalize.Email(appCfg.SuperAdminEmail)
	if email == "" || appCfg.SuperAdminPassword == "" {
		logger.Info("super admin seeding skipped (superadmin_email/superadmin_password not set)")
		return nil
	}

	store := superadminstore.New(deps.MasterDB)

	n, err := store.Count(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count super admins: %w", err)
	}
	if n > 0 {
		logger.Debug("super admins already present, skipping seed", zap.Int64("count", n))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash super admin password: %w", err)
	}

	name := strings.TrimSpace(appCfg.SuperAdminName)
	if name == "" {
		name = "Super Admin"
	}

	sa, err := store.Create(ctx, models.SuperAdmin{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Status:       models.StatusActive,
	})
	if err != nil {
		// A concurrent instance may have seeded first.
		if err == superadminstore.ErrDuplicateEmail {
			logger.Info("super admin already seeded by another instance", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("create super admin: %w", err)
	}

	logger.Info("seeded super admin account",
		zap.String("email", sa.Email),
		zap.String("id", sa.ID.Hex()))
	return nil
}
