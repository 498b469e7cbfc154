// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// MasterDB holds organizations and super admins; every other collection
// lives in a per-organization tenant database reached through the same
// client.
type DBDeps struct {
	MongoClient *mongo.Client
	MasterDB    *mongo.Database
}
