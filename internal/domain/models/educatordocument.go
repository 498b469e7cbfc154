package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EducatorDocument is a standalone record of one uploaded verification
// document (collection educator_documents). The same document is also
// embedded on the educator's OrgUser record; this collection exists so
// reviews can query documents without loading full user records.
type EducatorDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EducatorID primitive.ObjectID `bson:"educator_id" json:"educatorId"`
	Type       string             `bson:"type" json:"type"`
	URL        string             `bson:"url" json:"url"`
	StorageKey string             `bson:"storage_key,omitempty" json:"storageKey,omitempty"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploadedAt"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
