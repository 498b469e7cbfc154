// internal/app/store/batches/batchstore.go
package batchstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("batch not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("batches")}
}

func (s *Store) Create(ctx context.Context, b models.Batch) (models.Batch, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.NameCI = text.Fold(b.Name)
	if b.Status == "" {
		b.Status = models.BatchDraft
	}
	b.EnrolledCount = 0
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Batch{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Batch, error) {
	var b models.Batch
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Batch{}, ErrNotFound
	}
	if err != nil {
		return models.Batch{}, err
	}
	return b, nil
}

// Update applies a prebuilt $set document and refreshes UpdatedAt.
// EnrolledCount is only ever touched through the counter methods.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if set == nil {
		set = bson.M{}
	}
	if name, ok := set["name"].(string); ok && name != "" {
		set["name_ci"] = text.Fold(name)
	}
	delete(set, "enrolled_count")
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncEnrolled adjusts the enrolled counter by delta (positive on enroll,
// negative on cancel).
func (s *Store) IncEnrolled(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"enrolled_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus transitions batch lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a batch by ID. Enrollment cleanup is the caller's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns batches matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Batch, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// Count returns the number of batches matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
