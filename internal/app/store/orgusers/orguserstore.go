// internal/app/store/orgusers/orguserstore.go
package orguserstore

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
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_users")}
}

func (s *Store) Create(ctx context.Context, u models.OrgUser) (models.OrgUser, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.NameCI = text.Fold(u.Name)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgUser{}, ErrDuplicateEmail
		}
		return models.OrgUser{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.OrgUser, error) {
	var u models.OrgUser
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.OrgUser{}, ErrNotFound
	}
	if err != nil {
		return models.OrgUser{}, err
	}
	return u, nil
}

// GetActiveByEmailAndRole loads an active user holding the given role for
// login. Role is part of the filter because the same email may exist under
// different roles in historical tenants.
func (s *Store) GetActiveByEmailAndRole(ctx context.Context, email, role string) (models.OrgUser, error) {
	var u models.OrgUser
	err := s.c.FindOne(ctx, bson.M{
		"email":  email,
		"role":   role,
		"status": models.StatusActive,
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.OrgUser{}, ErrNotFound
	}
	if err != nil {
		return models.OrgUser{}, err
	}
	return u, nil
}

// EmailExists checks whether any user in this tenant already holds the email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": email}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update modifies a user's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u models.OrgUser) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if u.Name != "" {
		set["name"] = u.Name
		set["name_ci"] = text.Fold(u.Name)
	}
	if u.Phone != "" {
		set["phone"] = u.Phone
	}
	if u.Status != "" {
		set["status"] = u.Status
	}
	if u.Role != "" {
		set["role"] = u.Role
	}
	if u.PasswordHash != "" {
		set["password_hash"] = u.PasswordHash
	}
	if u.SubOrgID != nil {
		set["sub_org_id"] = u.SubOrgID
	}
	if u.EducatorProfile != nil {
		set["educator_profile"] = u.EducatorProfile
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
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

// AppendVerificationDocs pushes uploaded documents onto an educator's
// record and moves verification to pending, but only when the current
// status is empty or unverified so an admin decision is never overwritten
// by a re-upload.
func (s *Store) AppendVerificationDocs(ctx context.Context, id primitive.ObjectID, docs []models.VerificationDoc) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "role": models.RoleEducator},
		bson.M{
			"$push": bson.M{"verification_docs": bson.M{"$each": docs}},
			"$set":  bson.M{"updated_at": now},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	// Separate update so the push above always lands even when the status
	// transition does not apply.
	_, err = s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"$or": []bson.M{
				{"verification_status": bson.M{"$exists": false}},
				{"verification_status": ""},
				{"verification_status": models.VerificationUnverified},
			},
		},
		bson.M{"$set": bson.M{"verification_status": models.VerificationPending}})
	return err
}

// SetVerificationDecision records an approve/reject decision. Repeating the
// same decision is a no-op apart from refreshing the reviewer stamps.
func (s *Store) SetVerificationDecision(ctx context.Context, id primitive.ObjectID, status, notes string, reviewedBy primitive.ObjectID) error {
	now := time.Now().UTC()
	set := bson.M{
		"verification_status":      status,
		"verification_notes":       notes,
		"verification_reviewed_by": reviewedBy,
		"verification_reviewed_at": now,
		"updated_at":               now,
	}
	if status == models.VerificationApproved {
		set["verified_by"] = reviewedBy
		set["verified_at"] = now
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "role": models.RoleEducator},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns users matching the given filter with optional find options.
// The caller builds the filter (role, status, sub-org scope) and options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.OrgUser, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.OrgUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// CountBySubOrg returns user counts grouped by sub_org_id. Users without
// a sub-org are grouped under the zero ObjectID.
func (s *Store) CountBySubOrg(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$sub_org_id",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID    *primitive.ObjectID `bson:"_id"`
		Count int64               `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		var key primitive.ObjectID
		if row.ID != nil {
			key = *row.ID
		}
		counts[key] = row.Count
	}
	return counts, nil
}

// PullVerificationDoc removes one embedded verification document and
// returns it so the caller can clean up the stored file. ErrNotFound is
// returned when the user or the document does not exist.
func (s *Store) PullVerificationDoc(ctx context.Context, id, docID primitive.ObjectID) (models.VerificationDoc, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return models.VerificationDoc{}, err
	}

	var doc models.VerificationDoc
	found := false
	for _, d := range u.VerificationDocs {
		if d.DocID == docID {
			doc = d
			found = true
			break
		}
	}
	if !found {
		return models.VerificationDoc{}, ErrNotFound
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"verification_docs": bson.M{"doc_id": docID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.VerificationDoc{}, err
	}
	return doc, nil
}

// SetEducatorProfile replaces the educator profile block. Merging of
// individual fields happens in the handler, which reads the current
// profile first.
func (s *Store) SetEducatorProfile(ctx context.Context, id primitive.ObjectID, p *models.EducatorProfile) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "role": models.RoleEducator},
		bson.M{"$set": bson.M{
			"educator_profile": p,
			"updated_at":       time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
