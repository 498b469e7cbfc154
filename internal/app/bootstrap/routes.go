// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authnfeature "github.com/dalemusser/coursedeck/internal/app/features/authn"
	batchesfeature "github.com/dalemusser/coursedeck/internal/app/features/batches"
	coursesfeature "github.com/dalemusser/coursedeck/internal/app/features/courses"
	educatorsfeature "github.com/dalemusser/coursedeck/internal/app/features/educators"
	healthfeature "github.com/dalemusser/coursedeck/internal/app/features/health"
	learnerfeature "github.com/dalemusser/coursedeck/internal/app/features/learner"
	mediafeature "github.com/dalemusser/coursedeck/internal/app/features/media"
	organizationsfeature "github.com/dalemusser/coursedeck/internal/app/features/organizations"
	suborgsfeature "github.com/dalemusser/coursedeck/internal/app/features/suborgs"
	usersfeature "github.com/dalemusser/coursedeck/internal/app/features/users"
	organizationstore "github.com/dalemusser/coursedeck/internal/app/store/organizations"
	superadminstore "github.com/dalemusser/coursedeck/internal/app/store/superadmins"
	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/token"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The routing surface splits into three tiers:
//   - public: health and login endpoints
//   - master-plane: super admin organization management (master DB only)
//   - tenant-plane: everything else, behind the tenant resolver that maps
//     the caller's token to their organization's database
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	codec := token.NewCodec(appCfg.JWTSecret, appCfg.JWTExpiry)
	registry := tenant.NewRegistry(deps.MongoClient)

	files, err := buildStorage(appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	orgs := organizationstore.New(deps.MasterDB)
	superAdmins := superadminstore.New(deps.MasterDB)

	r := chi.NewRouter()

	// Global auth middleware: parses the bearer token if present and loads
	// the identity into context. Requests without a token pass through and
	// are rejected later by RequireRole where it matters.
	verifier := &auth.Verifier{Codec: codec, Log: logger}
	r.Use(verifier.LoadIdentity)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, registry, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication (super admin, org staff, learners)
	authHandler := authnfeature.NewHandler(orgs, superAdmins, registry, codec, logger)
	r.Mount("/auth", authnfeature.Routes(authHandler))

	// Organization provisioning lives on the master plane; no tenant
	// resolution is involved.
	orgHandler := organizationsfeature.NewHandler(orgs, registry, files, logger)
	r.Mount("/superadmin/organizations", organizationsfeature.Routes(orgHandler))

	// Tenant-plane routes. The registry middleware resolves the caller's
	// tenant database from the token and injects a handle for the stores.
	r.Group(func(r chi.Router) {
		r.Use(registry.Middleware(logger))

		usersHandler := usersfeature.NewHandler(logger)
		r.Mount("/admin/users", usersfeature.Routes(usersHandler))

		subOrgsHandler := suborgsfeature.NewHandler(logger)
		r.Mount("/admin/suborgs", suborgsfeature.Routes(subOrgsHandler))

		educatorsHandler := educatorsfeature.NewHandler(files, logger)
		r.Mount("/admin/educators", educatorsfeature.AdminRoutes(educatorsHandler))
		r.Mount("/educator", educatorsfeature.SelfRoutes(educatorsHandler))

		coursesHandler := coursesfeature.NewHandler(files, logger)
		r.Mount("/courses", coursesfeature.Routes(coursesHandler))

		mediaHandler := mediafeature.NewHandler(files, logger)
		r.Mount("/admin/media", mediafeature.Routes(mediaHandler))

		batchesHandler := batchesfeature.NewHandler(logger)
		r.Mount("/admin/batches", batchesfeature.StaffRoutes(batchesHandler))

		learnerHandler := learnerfeature.NewHandler(logger)
		r.Mount("/learner", learnerfeature.Routes(learnerHandler, batchesHandler.SelfEnroll))
	})

	return r, nil
}

// buildStorage constructs the file store for uploads (logos, verification
// documents, lesson materials). Only local disk storage is wired up;
// ValidateConfig rejects other storage_type values.
func buildStorage(appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	store, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("local file storage ready",
		zap.String("path", appCfg.StorageLocalPath),
		zap.String("url_prefix", appCfg.StorageLocalURL))
	return store, nil
}
