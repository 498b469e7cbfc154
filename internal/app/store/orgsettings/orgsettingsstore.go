// internal/app/store/orgsettings/orgsettingsstore.go
package orgsettingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the per-tenant settings singleton. Get returns ErrNotFound
// when the tenant has never saved settings; callers fall back to defaults.
type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("organization settings not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_settings")}
}

// Get loads the settings document. There is at most one per tenant.
func (s *Store) Get(ctx context.Context) (models.OrgSettings, error) {
	var set models.OrgSettings
	err := s.c.FindOne(ctx, bson.M{}).Decode(&set)
	if err == mongo.ErrNoDocuments {
		return models.OrgSettings{}, ErrNotFound
	}
	if err != nil {
		return models.OrgSettings{}, err
	}
	return set, nil
}

// Upsert writes the settings document, creating it on first save.
func (s *Store) Upsert(ctx context.Context, set models.OrgSettings, updatedBy *primitive.ObjectID) (models.OrgSettings, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"org_id":         set.OrgID,
			"branding":       set.Branding,
			"auth":           set.Auth,
			"course_builder": set.CourseBuilder,
			"notifications":  set.Notifications,
			"updated_by":     updatedBy,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.OrgSettings
	if err := s.c.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&out); err != nil {
		return models.OrgSettings{}, err
	}
	return out, nil
}

// UpdateBranding patches individual branding fields, creating the
// settings document if the tenant has none yet. Keys are field names
// inside the branding block (e.g. "logo_url").
func (s *Store) UpdateBranding(ctx context.Context, fields bson.M, updatedBy *primitive.ObjectID) (models.OrgSettings, error) {
	now := time.Now().UTC()
	set := bson.M{
		"updated_by": updatedBy,
		"updated_at": now,
	}
	for k, v := range fields {
		set["branding."+k] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.OrgSettings
	if err := s.c.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&out); err != nil {
		return models.OrgSettings{}, err
	}
	return out, nil
}

// Seed inserts an initial settings document during tenant provisioning.
// It is a no-op if settings already exist.
func (s *Store) Seed(ctx context.Context, set models.OrgSettings) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{},
		bson.M{"$setOnInsert": bson.M{
			"org_id":         set.OrgID,
			"branding":       set.Branding,
			"auth":           set.Auth,
			"course_builder": set.CourseBuilder,
			"notifications":  set.Notifications,
			"created_at":     now,
			"updated_at":     now,
		}},
		options.Update().SetUpsert(true))
	return err
}
