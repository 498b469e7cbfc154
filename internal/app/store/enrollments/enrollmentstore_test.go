package enrollmentstore_test

import (
	"testing"

	enrollmentstore "github.com/dalemusser/coursedeck/internal/app/store/enrollments"
	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_HasActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	batchID := primitive.NewObjectID()
	learnerID := primitive.NewObjectID()

	got, err := store.HasActive(ctx, batchID, learnerID)
	if err != nil {
		t.Fatalf("HasActive failed: %v", err)
	}
	if got {
		t.Error("expected no active enrollment yet")
	}

	e := f.CreateEnrollment(ctx, batchID, learnerID, models.EnrollmentPending)

	got, err = store.HasActive(ctx, batchID, learnerID)
	if err != nil {
		t.Fatalf("HasActive failed: %v", err)
	}
	if !got {
		t.Error("expected pending enrollment to count as active")
	}

	// Cancelled enrollments do not block re-enrollment.
	if err := store.SetStatus(ctx, e.ID, models.EnrollmentCancelled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err = store.HasActive(ctx, batchID, learnerID)
	if err != nil {
		t.Fatalf("HasActive failed: %v", err)
	}
	if got {
		t.Error("cancelled enrollment must not block re-enrollment")
	}

	// Completed enrollments do not block either.
	f.CreateEnrollment(ctx, batchID, learnerID, models.EnrollmentCompleted)
	got, err = store.HasActive(ctx, batchID, learnerID)
	if err != nil {
		t.Fatalf("HasActive failed: %v", err)
	}
	if got {
		t.Error("completed enrollment must not block re-enrollment")
	}
}

func TestStore_CreateDefaultsToPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, models.Enrollment{
		BatchID:   primitive.NewObjectID(),
		LearnerID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if e.Status != models.EnrollmentPending {
		t.Errorf("Status = %q, want pending", e.Status)
	}
	if e.EnrolledAt.IsZero() {
		t.Error("expected enrolled_at stamp")
	}
}

func TestStore_ListByLearnerAndBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	learnerID := primitive.NewObjectID()
	batchA := primitive.NewObjectID()
	batchB := primitive.NewObjectID()

	f.CreateEnrollment(ctx, batchA, learnerID, models.EnrollmentConfirmed)
	f.CreateEnrollment(ctx, batchB, learnerID, models.EnrollmentPending)
	f.CreateEnrollment(ctx, batchA, primitive.NewObjectID(), models.EnrollmentPending)

	byLearner, err := store.ListByLearner(ctx, learnerID)
	if err != nil {
		t.Fatalf("ListByLearner failed: %v", err)
	}
	if len(byLearner) != 2 {
		t.Errorf("byLearner = %d, want 2", len(byLearner))
	}

	byBatch, err := store.ListByBatch(ctx, batchA)
	if err != nil {
		t.Fatalf("ListByBatch failed: %v", err)
	}
	if len(byBatch) != 2 {
		t.Errorf("byBatch = %d, want 2", len(byBatch))
	}
}

func TestStore_DeleteByBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	batchID := primitive.NewObjectID()
	f.CreateEnrollment(ctx, batchID, primitive.NewObjectID(), models.EnrollmentPending)
	f.CreateEnrollment(ctx, batchID, primitive.NewObjectID(), models.EnrollmentConfirmed)

	n, err := store.DeleteByBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("DeleteByBatch failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}
