// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/indexes"
	"github.com/dalemusser/coursedeck/internal/app/system/timeouts"
)

// ConnectDB establishes the MongoDB connection shared by the master
// database and every tenant database. Tenant databases live on the same
// cluster, so one client serves all of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	// Verify connectivity now rather than on the first request.
	pingCtx, cancelPing := context.WithTimeout(ctx, timeouts.Long)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient: client,
		MasterDB:    client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the master database indexes. Tenant database
// indexes are created when an organization is provisioned (and repaired
// by the reconcile endpoint), so only the master set is handled here.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureMaster(ctx, deps.MasterDB); err != nil {
		return fmt.Errorf("ensure master indexes: %w", err)
	}
	logger.Info("master database indexes ensured", zap.String("database", appCfg.MongoDatabase))
	return nil
}
