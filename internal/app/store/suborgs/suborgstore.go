// internal/app/store/suborgs/suborgstore.go
package suborgstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSubOrg = errors.New("a sub-organization with this name already exists")
	ErrNotFound        = errors.New("sub-organization not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sub_orgs")}
}

func (s *Store) Create(ctx context.Context, so models.SubOrg) (models.SubOrg, error) {
	now := time.Now().UTC()
	so.ID = primitive.NewObjectID()
	so.NameCI = text.Fold(so.Name)
	if so.Status == "" {
		so.Status = models.StatusActive
	}
	so.CreatedAt = now
	so.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, so)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.SubOrg{}, ErrDuplicateSubOrg
		}
		return models.SubOrg{}, err
	}
	return so, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.SubOrg, error) {
	var so models.SubOrg
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&so)
	if err == mongo.ErrNoDocuments {
		return models.SubOrg{}, ErrNotFound
	}
	if err != nil {
		return models.SubOrg{}, err
	}
	return so, nil
}

// ExistsByNameCI checks if a sub-org with the given case-insensitive name exists.
func (s *Store) ExistsByNameCI(ctx context.Context, nameCI string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name_ci": nameCI}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update modifies a sub-org's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, so models.SubOrg) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if so.Name != "" {
		set["name"] = so.Name
		set["name_ci"] = text.Fold(so.Name)
	}
	if so.Description != "" {
		set["description"] = so.Description
	}
	if so.Status != "" {
		set["status"] = so.Status
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSubOrg
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a sub-org by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns sub-orgs matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.SubOrg, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subOrgs []models.SubOrg
	if err := cur.All(ctx, &subOrgs); err != nil {
		return nil, err
	}
	return subOrgs, nil
}

// Count returns the number of sub-orgs matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
