// internal/app/store/superadmins/superadminstore.go
package superadminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail = errors.New("a super admin with this email already exists")
	ErrNotFound       = errors.New("super admin not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("super_admins")}
}

func (s *Store) Create(ctx context.Context, sa models.SuperAdmin) (models.SuperAdmin, error) {
	now := time.Now().UTC()
	sa.ID = primitive.NewObjectID()
	if sa.Status == "" {
		sa.Status = models.StatusActive
	}
	sa.CreatedAt = now
	sa.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, sa)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.SuperAdmin{}, ErrDuplicateEmail
		}
		return models.SuperAdmin{}, err
	}
	return sa, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.SuperAdmin, error) {
	var sa models.SuperAdmin
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sa)
	if err == mongo.ErrNoDocuments {
		return models.SuperAdmin{}, ErrNotFound
	}
	if err != nil {
		return models.SuperAdmin{}, err
	}
	return sa, nil
}

// GetActiveByEmail loads an active super admin for login.
func (s *Store) GetActiveByEmail(ctx context.Context, email string) (models.SuperAdmin, error) {
	var sa models.SuperAdmin
	err := s.c.FindOne(ctx, bson.M{"email": email, "status": models.StatusActive}).Decode(&sa)
	if err == mongo.ErrNoDocuments {
		return models.SuperAdmin{}, ErrNotFound
	}
	if err != nil {
		return models.SuperAdmin{}, err
	}
	return sa, nil
}

// TouchLastLogin stamps the most recent successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_login_at": now,
		"updated_at":    now,
	}})
	return err
}

// Count returns the number of super admins matching the filter. Startup
// seeding uses this to decide whether a first account is needed.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
