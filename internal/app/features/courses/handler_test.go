package courses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/coursedeck/internal/app/system/indexes"
	"github.com/dalemusser/coursedeck/internal/app/tenant"
	"github.com/dalemusser/coursedeck/internal/domain/models"
	"github.com/dalemusser/coursedeck/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func tenantHandle(t *testing.T, db *mongo.Database) *tenant.Handle {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("ensure tenant indexes: %v", err)
	}
	h, err := tenant.NewRegistry(db.Client()).Resolve(ctx, db.Name())
	if err != nil {
		t.Fatalf("resolve tenant: %v", err)
	}
	return h
}

func doRequest(t *testing.T, hf http.HandlerFunc, th *tenant.Handle, id *auth.Identity, method, target, body string, params map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, id)
	for k, v := range params {
		req = testutil.WithChiURLParam(req, k, v)
	}
	rec := httptest.NewRecorder()
	hf(rec, req)
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec, env
}

func TestCreateCourse_PricingNormalization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	// Legacy flat fields are accepted.
	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"Intro to Go","price":49.99,"currency":"USD"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var c models.Course
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if c.Pricing.Price != 49.99 || c.Pricing.Currency != "USD" {
		t.Errorf("pricing = %+v", c.Pricing)
	}
	if c.Status != models.CourseDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}

	// The nested block wins over flat fields, and isFree zeroes the price.
	rec, env = doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"Free Course","price":10,"pricing":{"isFree":true,"price":99}}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !c.Pricing.IsFree || c.Pricing.Price != 0 {
		t.Errorf("free course pricing = %+v", c.Pricing)
	}
}

func TestCreateCourse_NegativePrice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"Bad","price":-5}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCourse_SanitizesDescription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"XSS","description":"<p>ok</p><script>alert(1)</script>"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var c models.Course
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if strings.Contains(c.Description, "<script>") {
		t.Errorf("description not sanitized: %q", c.Description)
	}
	if !strings.Contains(c.Description, "<p>ok</p>") {
		t.Errorf("safe markup stripped: %q", c.Description)
	}
}

func TestCreateCourse_Slug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	// With no slug in the request the title is slugified.
	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"Advanced Go Patterns"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var c models.Course
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if c.Slug != "advanced-go-patterns" {
		t.Errorf("slug = %q, want advanced-go-patterns", c.Slug)
	}

	// An explicit slug is normalized and wins over the title.
	rec, env = doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"title":"Another Course","slug":"Go Basics"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if c.Slug != "go-basics" {
		t.Errorf("slug = %q, want go-basics", c.Slug)
	}
}

func TestCreateLesson_TypesAndVideoSource(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	course := f.CreateCourse(ctx, "Lesson Types", models.CourseDraft)
	admin := testutil.AdminIdentity(db.Name())
	sec, err := th.Sections.Create(ctx, models.CourseSection{CourseID: course.ID, Title: "Part One"})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	params := map[string]string{"courseID": course.ID.Hex(), "sectionID": sec.ID.Hex()}

	// pdf and text are valid lesson types.
	rec, _ := doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Syllabus","type":"pdf","resourceUrl":"https://cdn.example.com/syllabus.pdf"}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pdf lesson: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec, env := doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Reading","type":"text","textContent":"<p>welcome</p>"}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("text lesson: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var l models.CourseLesson
	if err := json.Unmarshal(env.Data, &l); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if l.TextContent != "<p>welcome</p>" {
		t.Errorf("textContent = %q", l.TextContent)
	}

	// Rejected types from the old catalog stay rejected.
	rec, _ = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Nope","type":"quiz"}`, params)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("quiz lesson: status = %d, want 400", rec.Code)
	}

	// An external video URL defaults the source to youtube; an explicit
	// sharepoint source sticks.
	rec, env = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Intro","type":"video","videoUrl":"https://youtu.be/abc","durationMinutes":12}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("video lesson: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &l); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if l.VideoSource != models.VideoSourceYouTube {
		t.Errorf("videoSource = %q, want youtube", l.VideoSource)
	}
	if l.DurationMinutes != 12 {
		t.Errorf("durationMinutes = %d, want 12", l.DurationMinutes)
	}

	rec, env = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Recording","type":"video","videoSource":"sharepoint","videoUrl":"https://sp.example.com/v"}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sharepoint lesson: status = %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &l); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if l.VideoSource != models.VideoSourceSharePoint {
		t.Errorf("videoSource = %q, want sharepoint", l.VideoSource)
	}

	// upload as a source needs an actual upload key behind it.
	rec, _ = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Broken","type":"video","videoSource":"upload","videoUrl":"https://x"}`, params)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("upload source without key: status = %d, want 400", rec.Code)
	}
}

func TestEducatorOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	course := f.CreateCourse(ctx, "Owned Course", models.CourseDraft)

	owner := primitive.NewObjectID()
	if err := th.Courses.Update(ctx, course.ID, map[string]interface{}{"educator_id": owner}); err != nil {
		t.Fatalf("assign owner: %v", err)
	}

	other := testutil.EducatorIdentity(db.Name(), primitive.NewObjectID())
	rec, _ := doRequest(t, h.Get, th, other, http.MethodGet, "/"+course.ID.Hex(), "",
		map[string]string{"courseID": course.ID.Hex()})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-owner educator", rec.Code)
	}

	self := testutil.EducatorIdentity(db.Name(), owner)
	rec, _ = doRequest(t, h.Get, th, self, http.MethodGet, "/"+course.ID.Hex(), "",
		map[string]string{"courseID": course.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for owner", rec.Code)
	}
}

func TestPublish_RequiresLessons(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	course := f.CreateCourse(ctx, "Empty Course", models.CourseDraft)
	admin := testutil.AdminIdentity(db.Name())
	params := map[string]string{"courseID": course.ID.Hex()}

	rec, _ := doRequest(t, h.Publish, th, admin, http.MethodPost, "/publish", "", params)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty curriculum", rec.Code)
	}

	sec, err := th.Sections.Create(ctx, models.CourseSection{CourseID: course.ID, Title: "Basics"})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	if _, err := th.Lessons.Create(ctx, models.CourseLesson{
		CourseID: course.ID, SectionID: sec.ID, Title: "Hello", Type: models.LessonText,
	}); err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	rec, env := doRequest(t, h.Publish, th, admin, http.MethodPost, "/publish", "", params)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var c models.Course
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if c.Status != models.CoursePublished {
		t.Errorf("status = %q, want published", c.Status)
	}
	if c.PublishedAt == nil {
		t.Error("publish did not stamp published_at")
	}
}

func TestCurriculumAndCascadeDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	course := f.CreateCourse(ctx, "Structured Course", models.CourseDraft)
	admin := testutil.AdminIdentity(db.Name())
	params := map[string]string{"courseID": course.ID.Hex()}

	// Build two sections with a lesson each through the handlers.
	rec, env := doRequest(t, h.CreateSection, th, admin, http.MethodPost, "/sections",
		`{"title":"Part One"}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create section: %d", rec.Code)
	}
	var sec1 models.CourseSection
	if err := json.Unmarshal(env.Data, &sec1); err != nil {
		t.Fatalf("decode section: %v", err)
	}
	if sec1.Order != 1 {
		t.Errorf("first section order = %d, want 1", sec1.Order)
	}

	rec, env = doRequest(t, h.CreateSection, th, admin, http.MethodPost, "/sections",
		`{"title":"Part Two"}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create section: %d", rec.Code)
	}
	var sec2 models.CourseSection
	if err := json.Unmarshal(env.Data, &sec2); err != nil {
		t.Fatalf("decode section: %v", err)
	}
	if sec2.Order != 2 {
		t.Errorf("second section order = %d, want 2", sec2.Order)
	}

	lessonParams := map[string]string{"courseID": course.ID.Hex(), "sectionID": sec1.ID.Hex()}
	rec, _ = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Welcome","type":"video","videoUrl":"https://cdn.example.com/v1.mp4"}`, lessonParams)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lesson: %d", rec.Code)
	}

	// Both video sources at once is rejected.
	rec, _ = doRequest(t, h.CreateLesson, th, admin, http.MethodPost, "/lessons",
		`{"title":"Bad","type":"video","videoUrl":"https://x","videoUploadKey":"k"}`, lessonParams)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for dual video source", rec.Code)
	}

	rec, env = doRequest(t, h.Curriculum, th, admin, http.MethodGet, "/curriculum", "", params)
	if rec.Code != http.StatusOK {
		t.Fatalf("curriculum: %d", rec.Code)
	}
	var views []sectionView
	if err := json.Unmarshal(env.Data, &views); err != nil {
		t.Fatalf("decode curriculum: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("sections = %d, want 2", len(views))
	}
	if len(views[0].Lessons) != 1 || len(views[1].Lessons) != 0 {
		t.Errorf("lesson distribution wrong: %d/%d", len(views[0].Lessons), len(views[1].Lessons))
	}

	// Deleting the course removes the whole curriculum.
	rec, _ = doRequest(t, h.Delete, th, admin, http.MethodDelete, "/", "", params)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete course: %d", rec.Code)
	}
	secs, err := th.Sections.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(secs) != 0 {
		t.Errorf("sections remain after course delete: %d", len(secs))
	}
	lessons, err := th.Lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if len(lessons) != 0 {
		t.Errorf("lessons remain after course delete: %d", len(lessons))
	}
}
