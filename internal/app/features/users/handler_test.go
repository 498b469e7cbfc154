package users

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

func doRequest(t *testing.T, h http.HandlerFunc, th *tenant.Handle, id *auth.Identity, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, id)
	rec := httptest.NewRecorder()
	h(rec, req)
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec, env
}

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"name":"Eve Educator","email":"EVE@acme.test","password":"pw12345","role":"educator"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var u models.OrgUser
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if u.Email != "eve@acme.test" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Role != models.RoleEducator {
		t.Errorf("role = %q", u.Role)
	}
	if u.Status != models.StatusActive {
		t.Errorf("status = %q, want active", u.Status)
	}
	if u.PasswordHash == "pw12345" || u.PasswordHash == "" {
		t.Error("password was not hashed")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	body := `{"name":"Eve","email":"eve@acme.test","password":"pw12345","role":"learner"}`
	if rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if env.Success {
		t.Error("expected failure envelope")
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"name":"X","email":"x@acme.test","password":"pw","role":"superadmin"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubOrgAdminScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	so := f.CreateSubOrg(ctx, "North Campus")
	other := f.CreateSubOrg(ctx, "South Campus")

	subAdmin := &auth.Identity{
		UserID:   primitive.NewObjectID().Hex(),
		Role:     models.RoleSubOrgAdmin,
		OrgID:    primitive.NewObjectID().Hex(),
		DBName:   db.Name(),
		SubOrgID: so.ID.Hex(),
	}

	// Creations by a sub-org admin land in their own sub-org even when the
	// request names a different one.
	rec, env := doRequest(t, h.Create, th, subAdmin, http.MethodPost, "/",
		`{"name":"Lia Learner","email":"lia@acme.test","password":"pw12345","role":"learner","subOrgId":"`+other.ID.Hex()+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.OrgUser
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if created.SubOrgID == nil || *created.SubOrgID != so.ID {
		t.Errorf("subOrgId = %v, want %s", created.SubOrgID, so.ID.Hex())
	}

	// Sub-org admins cannot create other sub-org admins.
	rec, _ = doRequest(t, h.Create, th, subAdmin, http.MethodPost, "/",
		`{"name":"Bad","email":"bad@acme.test","password":"pw12345","role":"subOrgAdmin"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// A user outside the sub-org is invisible to the sub-org admin.
	outsider := f.CreateOrgUser(ctx, "Out Sider", "out@acme.test", models.RoleLearner, "hash")
	req := httptest.NewRequest(http.MethodGet, "/"+outsider.ID.Hex(), nil)
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, subAdmin)
	req = testutil.WithChiURLParam(req, "userID", outsider.ID.Hex())
	rec2 := httptest.NewRecorder()
	h.Get(rec2, req)
	if rec2.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for cross-sub-org access", rec2.Code)
	}
}

func TestListUsers_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	f.CreateOrgUser(ctx, "A Learner", "a@acme.test", models.RoleLearner, "hash")
	f.CreateOrgUser(ctx, "B Learner", "b@acme.test", models.RoleLearner, "hash")
	f.CreateOrgUser(ctx, "C Educator", "c@acme.test", models.RoleEducator, "hash")

	admin := testutil.AdminIdentity(db.Name())
	rec, env := doRequest(t, h.List, th, admin, http.MethodGet, "/?role=learner", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data listResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Total != 2 {
		t.Errorf("total = %d, want 2", data.Total)
	}
	for _, u := range data.Users {
		if u.Role != models.RoleLearner {
			t.Errorf("unexpected role %q in filtered list", u.Role)
		}
	}
}

func TestUpdateUser_StatusAndPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	u := f.CreateOrgUser(ctx, "A Learner", "a@acme.test", models.RoleLearner, "oldhash")
	admin := testutil.AdminIdentity(db.Name())

	req := httptest.NewRequest(http.MethodPatch, "/"+u.ID.Hex(), strings.NewReader(`{"status":"blocked","password":"newpw123"}`))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, admin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, err := th.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusBlocked {
		t.Errorf("status = %q, want blocked", got.Status)
	}
	if got.PasswordHash == "oldhash" {
		t.Error("password hash was not rotated")
	}
}

func TestUpdateUser_RoleChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	u := f.CreateOrgUser(ctx, "A Learner", "a@acme.test", models.RoleLearner, "hash")
	admin := testutil.AdminIdentity(db.Name())

	req := httptest.NewRequest(http.MethodPatch, "/"+u.ID.Hex(), strings.NewReader(`{"role":"educator"}`))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, admin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, err := th.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Role != models.RoleEducator {
		t.Errorf("role = %q, want educator", got.Role)
	}

	// Unknown roles are rejected.
	req = httptest.NewRequest(http.MethodPatch, "/"+u.ID.Hex(), strings.NewReader(`{"role":"superadmin"}`))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, admin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown role", rec.Code)
	}
}

func TestUpdateUser_SubOrgAdminCannotEscalate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	so := f.CreateSubOrg(ctx, "North Campus")
	u := f.CreateOrgUser(ctx, "A Learner", "a@acme.test", models.RoleLearner, "hash")
	if err := th.Users.Update(ctx, u.ID, models.OrgUser{SubOrgID: &so.ID}); err != nil {
		t.Fatalf("assign sub-org: %v", err)
	}

	subAdmin := &auth.Identity{
		UserID:   primitive.NewObjectID().Hex(),
		Role:     models.RoleSubOrgAdmin,
		OrgID:    primitive.NewObjectID().Hex(),
		DBName:   db.Name(),
		SubOrgID: so.ID.Hex(),
	}

	req := httptest.NewRequest(http.MethodPatch, "/"+u.ID.Hex(), strings.NewReader(`{"role":"admin"}`))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, subAdmin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for role escalation", rec.Code)
	}

	// The same caller may still hand out the educator role.
	req = httptest.NewRequest(http.MethodPatch, "/"+u.ID.Hex(), strings.NewReader(`{"role":"educator"}`))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, subAdmin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got, err := th.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Role != models.RoleEducator {
		t.Errorf("role = %q, want educator", got.Role)
	}
}

func TestDeleteUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	u := f.CreateOrgUser(ctx, "A Learner", "a@acme.test", models.RoleLearner, "hash")
	admin := testutil.AdminIdentity(db.Name())

	req := httptest.NewRequest(http.MethodDelete, "/"+u.ID.Hex(), nil)
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, admin)
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if _, err := th.Users.GetByID(ctx, u.ID); err == nil {
		t.Error("user still present after delete")
	}
}
