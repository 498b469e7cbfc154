package batchstore_test

import (
	"testing"

	batchstore "github.com/dalemusser/coursedeck/internal/app/store/batches"
	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, models.Batch{
		Name:        "Morning Cohort",
		CourseID:    "663d1f77bcf86cd799439011",
		MaxLearners: 25,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Status != models.BatchDraft {
		t.Errorf("Status = %q, want draft", b.Status)
	}
	if b.EnrolledCount != 0 {
		t.Errorf("EnrolledCount = %d, want 0", b.EnrolledCount)
	}
}

func TestStore_IncEnrolled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	b := f.CreateBatch(ctx, "Morning Cohort", "course-1", models.BatchPublished, 2)

	if err := store.IncEnrolled(ctx, b.ID, 1); err != nil {
		t.Fatalf("IncEnrolled failed: %v", err)
	}
	if err := store.IncEnrolled(ctx, b.ID, 1); err != nil {
		t.Fatalf("IncEnrolled failed: %v", err)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.EnrolledCount != 2 {
		t.Errorf("EnrolledCount = %d, want 2", got.EnrolledCount)
	}
	if got.HasCapacity() {
		t.Error("expected batch full at capacity 2")
	}

	if err := store.IncEnrolled(ctx, b.ID, -1); err != nil {
		t.Fatalf("IncEnrolled failed: %v", err)
	}
	got, err = store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.EnrolledCount != 1 {
		t.Errorf("EnrolledCount = %d, want 1", got.EnrolledCount)
	}
}

func TestStore_Update_IgnoresEnrolledCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	b := f.CreateBatch(ctx, "Morning Cohort", "course-1", models.BatchPublished, 0)

	if err := store.IncEnrolled(ctx, b.ID, 3); err != nil {
		t.Fatalf("IncEnrolled failed: %v", err)
	}
	if err := store.Update(ctx, b.ID, bson.M{
		"name":           "Evening Cohort",
		"enrolled_count": 99,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Evening Cohort" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.EnrolledCount != 3 {
		t.Errorf("EnrolledCount = %d, counter must not be writable via Update", got.EnrolledCount)
	}
}

func TestBatch_OpenForEnrollment(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{models.BatchDraft, false},
		{models.BatchPublished, true},
		{models.BatchOngoing, true},
		{models.BatchCompleted, false},
		{models.BatchCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			b := models.Batch{Status: tt.status}
			if got := b.OpenForEnrollment(); got != tt.want {
				t.Errorf("OpenForEnrollment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatch_HasCapacity_ZeroMeansUnlimited(t *testing.T) {
	b := models.Batch{MaxLearners: 0, EnrolledCount: 100000}
	if !b.HasCapacity() {
		t.Error("capacity 0 must mean unlimited")
	}

	b = models.Batch{MaxLearners: 10, EnrolledCount: 9}
	if !b.HasCapacity() {
		t.Error("expected capacity at 9/10")
	}

	b = models.Batch{MaxLearners: 10, EnrolledCount: 10}
	if b.HasCapacity() {
		t.Error("expected no capacity at 10/10")
	}
}
