// internal/app/store/courselessons/lessonstore.go
package lessonstore

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

var ErrNotFound = errors.New("lesson not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("course_lessons")}
}

// Create appends a lesson to a section. Order is the current lesson count
// within the section plus one.
func (s *Store) Create(ctx context.Context, l models.CourseLesson) (models.CourseLesson, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"section_id": l.SectionID})
	if err != nil {
		return models.CourseLesson{}, err
	}
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.Order = int(count) + 1
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.CourseLesson{}, err
	}
	return l, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CourseLesson, error) {
	var l models.CourseLesson
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return models.CourseLesson{}, ErrNotFound
	}
	if err != nil {
		return models.CourseLesson{}, err
	}
	return l, nil
}

// ListBySection returns lessons of one section in order.
func (s *Store) ListBySection(ctx context.Context, sectionID primitive.ObjectID) ([]models.CourseLesson, error) {
	cur, err := s.c.Find(ctx, bson.M{"section_id": sectionID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var lessons []models.CourseLesson
	if err := cur.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// ListByCourse returns every lesson of a course, ordered by section and
// lesson order, for curriculum assembly.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.CourseLesson, error) {
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{
			{Key: "section_id", Value: 1},
			{Key: "order", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var lessons []models.CourseLesson
	if err := cur.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Update applies a prebuilt $set/$unset pair and refreshes UpdatedAt.
// Handlers use the unset side to clear the losing half of the video
// source pair (external URL vs uploaded file).
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set, unset bson.M) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
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

// DeleteBySection removes every lesson in a section (cascade delete).
func (s *Store) DeleteBySection(ctx context.Context, sectionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"section_id": sectionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCourse removes every lesson of a course (cascade delete).
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
