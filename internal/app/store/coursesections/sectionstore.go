// internal/app/store/coursesections/sectionstore.go
package sectionstore

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

var ErrNotFound = errors.New("section not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("course_sections")}
}

// Create appends a section to the course. Order is the current section
// count plus one; deletions leave gaps rather than renumbering.
func (s *Store) Create(ctx context.Context, sec models.CourseSection) (models.CourseSection, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"course_id": sec.CourseID})
	if err != nil {
		return models.CourseSection{}, err
	}
	now := time.Now().UTC()
	sec.ID = primitive.NewObjectID()
	sec.Order = int(count) + 1
	sec.CreatedAt = now
	sec.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sec); err != nil {
		return models.CourseSection{}, err
	}
	return sec, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CourseSection, error) {
	var sec models.CourseSection
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sec)
	if err == mongo.ErrNoDocuments {
		return models.CourseSection{}, ErrNotFound
	}
	if err != nil {
		return models.CourseSection{}, err
	}
	return sec, nil
}

// ListByCourse returns all sections of a course in order.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.CourseSection, error) {
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var secs []models.CourseSection
	if err := cur.All(ctx, &secs); err != nil {
		return nil, err
	}
	return secs, nil
}

// Update modifies title/description and refreshes UpdatedAt. Order is
// never changed after creation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, sec models.CourseSection) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if sec.Title != "" {
		set["title"] = sec.Title
	}
	if sec.Description != "" {
		set["description"] = sec.Description
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCourse removes every section of a course (cascade delete).
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
