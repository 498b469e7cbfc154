package suborgs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
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

func doRequest(t *testing.T, hf http.HandlerFunc, th *tenant.Handle, id *auth.Identity, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, id)
	rec := httptest.NewRecorder()
	hf(rec, req)
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec, env
}

func TestCreateSubOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"name":"  North Campus  ","description":"The northern branch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.SubOrg.Name != "North Campus" {
		t.Errorf("name not trimmed: %q", resp.SubOrg.Name)
	}
	if resp.SubOrg.Status != models.StatusActive {
		t.Errorf("status = %q, want active", resp.SubOrg.Status)
	}
	if resp.Admin != nil {
		t.Errorf("admin should be nil when not requested")
	}
}

func TestCreateSubOrg_WithAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	rec, env := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"name":"East Campus","admin":{"name":"Erin East","email":"Erin@acme.test","password":"secret123"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Admin == nil {
		t.Fatal("expected admin in response")
	}
	if resp.Admin.Role != models.RoleSubOrgAdmin {
		t.Errorf("admin role = %q", resp.Admin.Role)
	}
	if resp.Admin.Email != "erin@acme.test" {
		t.Errorf("admin email = %q, want lowercased", resp.Admin.Email)
	}
	if resp.Admin.SubOrgID == nil || *resp.Admin.SubOrgID != resp.SubOrg.ID {
		t.Errorf("admin not bound to the new sub-org")
	}
}

func TestCreateSubOrg_WithAdmin_DuplicateEmailUnwinds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	f.CreateOrgUser(ctx, "Existing", "taken@acme.test", models.RoleLearner, "")

	rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/",
		`{"name":"West Campus","admin":{"name":"Wes","email":"taken@acme.test","password":"secret123"}}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	// The sub-org must not survive the failed combined create.
	n, err := th.SubOrgs.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected sub-org to be unwound, found %d", n)
	}
}

func TestCreateSubOrg_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	admin := testutil.AdminIdentity(db.Name())

	if rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/", `{"name":"North Campus"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	// Same name with different case still collides.
	rec, _ := doRequest(t, h.Create, th, admin, http.MethodPost, "/", `{"name":"NORTH campus"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestListSubOrgs_UserCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	so := f.CreateSubOrg(ctx, "North Campus")
	f.CreateSubOrg(ctx, "South Campus")

	for _, email := range []string{"a@acme.test", "b@acme.test"} {
		u := f.CreateOrgUser(ctx, "Member", email, models.RoleLearner, "hash")
		update := models.OrgUser{SubOrgID: &so.ID}
		if err := th.Users.Update(ctx, u.ID, update); err != nil {
			t.Fatalf("bind user to sub-org: %v", err)
		}
	}

	admin := testutil.AdminIdentity(db.Name())
	rec, env := doRequest(t, h.List, th, admin, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data listResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Total != 2 {
		t.Fatalf("total = %d, want 2", data.Total)
	}
	byName := map[string]int64{}
	for _, item := range data.SubOrgs {
		byName[item.Name] = item.UserCount
	}
	if byName["North Campus"] != 2 {
		t.Errorf("north count = %d, want 2", byName["North Campus"])
	}
	if byName["South Campus"] != 0 {
		t.Errorf("south count = %d, want 0", byName["South Campus"])
	}
}

func TestDeleteSubOrg_BlockedWhileMembersRemain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	th := tenantHandle(t, db)
	h := NewHandler(zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	so := f.CreateSubOrg(ctx, "North Campus")
	u := f.CreateOrgUser(ctx, "Member", "a@acme.test", models.RoleLearner, "hash")
	if err := th.Users.Update(ctx, u.ID, models.OrgUser{SubOrgID: &so.ID}); err != nil {
		t.Fatalf("bind user: %v", err)
	}

	admin := testutil.AdminIdentity(db.Name())
	req := httptest.NewRequest(http.MethodDelete, "/"+so.ID.Hex(), nil)
	req = req.WithContext(tenant.WithHandle(req.Context(), th))
	req = testutil.WithIdentity(req, admin)
	req = testutil.WithChiURLParam(req, "subOrgID", so.ID.Hex())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 while members remain", rec.Code)
	}

	// After the member is removed the delete goes through.
	if _, err := th.Users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	req2 := httptest.NewRequest(http.MethodDelete, "/"+so.ID.Hex(), nil)
	req2 = req2.WithContext(tenant.WithHandle(req2.Context(), th))
	req2 = testutil.WithIdentity(req2, admin)
	req2 = testutil.WithChiURLParam(req2, "subOrgID", so.ID.Hex())
	rec2 := httptest.NewRecorder()
	h.Delete(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after members removed", rec2.Code)
	}
}
