// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, and request body size limits.
// AppConfig is where everything specific to CourseDeck lives: the master
// database connection, token signing, file storage, and the bootstrap
// super admin account.
type AppConfig struct {
	// MongoDB connection configuration. MongoDatabase names the master
	// database; tenant databases are created per organization and are
	// resolved at request time.
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Master database name
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Access token configuration
	JWTSecret string        // HMAC secret for signing access tokens (must be strong in production)
	JWTExpiry time.Duration // Access token lifetime (e.g., 24h)

	// File storage configuration
	StorageType      string // Storage backend: "local" (S3 support planned)
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// Super admin bootstrap. When both email and password are set and no
	// super admin exists yet, one is created on startup.
	SuperAdminName     string // Display name for the seeded super admin
	SuperAdminEmail    string // Email of the seeded super admin
	SuperAdminPassword string // Initial password for the seeded super admin
}
