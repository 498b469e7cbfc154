// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

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

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("enrollment not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

func (s *Store) Create(ctx context.Context, e models.Enrollment) (models.Enrollment, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	if e.Status == "" {
		e.Status = models.EnrollmentPending
	}
	if e.Source == "" {
		e.Source = models.EnrollmentSourceAdmin
	}
	e.EnrolledAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.Enrollment{}, ErrNotFound
	}
	if err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

// HasActive reports whether the learner already holds a pending or
// confirmed enrollment in the batch. Cancelled and completed records do
// not block re-enrollment.
func (s *Store) HasActive(ctx context.Context, batchID, learnerID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"batch_id":   batchID,
		"learner_id": learnerID,
		"status":     bson.M{"$in": []string{models.EnrollmentPending, models.EnrollmentConfirmed}},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus transitions an enrollment's status.
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

// Find returns enrollments matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Enrollment, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var enrollments []models.Enrollment
	if err := cur.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ListByLearner returns a learner's enrollments, newest first.
func (s *Store) ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.Enrollment, error) {
	return s.Find(ctx, bson.M{"learner_id": learnerID},
		options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}}))
}

// ListByBatch returns a batch's enrollments, oldest first.
func (s *Store) ListByBatch(ctx context.Context, batchID primitive.ObjectID) ([]models.Enrollment, error) {
	return s.Find(ctx, bson.M{"batch_id": batchID},
		options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: 1}}))
}

// DeleteByBatch removes every enrollment of a batch (cascade delete).
func (s *Store) DeleteByBatch(ctx context.Context, batchID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of enrollments matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
