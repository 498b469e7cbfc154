// internal/app/store/educatordocs/educatordocstore.go
package educatordocstore

import (
	"context"
	"time"

	"github.com/dalemusser/coursedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store records verification documents in their own collection alongside
// the copies embedded on the educator's user record.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("educator_documents")}
}

func (s *Store) Create(ctx context.Context, doc models.EducatorDocument) (models.EducatorDocument, error) {
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = doc.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return models.EducatorDocument{}, err
	}
	return doc, nil
}

// ListByEducator returns an educator's documents, newest first.
func (s *Store) ListByEducator(ctx context.Context, educatorID primitive.ObjectID) ([]models.EducatorDocument, error) {
	cur, err := s.c.Find(ctx, bson.M{"educator_id": educatorID},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.EducatorDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
