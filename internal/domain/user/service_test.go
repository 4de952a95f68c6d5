package user

import (
	"context"
	"testing"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/location"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type mockRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: map[int64]*User{}, nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) UsernameOrEmailTaken(_ context.Context, username, email string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Insert(_ context.Context, u *User) error {
	u.ID = m.nextID
	m.nextID++
	u.IsActive = true
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, id int64, in UpdateInput) (*User, error) {
	u := m.users[id]
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) Deactivate(_ context.Context, id int64) (*User, error) {
	u := m.users[id]
	u.IsActive = false
	cp := *u
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, _ ListFilter, _, _ int) ([]*User, int, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) ReplaceRoles(_ context.Context, userID int64, roles []string) error {
	m.users[userID].Roles = append([]string(nil), roles...)
	return nil
}

func (m *mockRepo) Roles(_ context.Context) ([]*Role, error) {
	return []*Role{{ID: 1, Name: auth.RoleAdmin}}, nil
}

type countingTx struct {
	opened int
}

func (t *countingTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	t.opened++
	return fn(ctx)
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(_ context.Context, e audit.Entry) (int64, error) {
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

func seedUser(repo *mockRepo, username, email string, roles ...string) *User {
	u := &User{Username: username, Email: email, PasswordHash: "x", FirstName: "Seed", LastName: "User"}
	_ = repo.Insert(context.Background(), u)
	_ = repo.ReplaceRoles(context.Background(), u.ID, roles)
	u.Roles = roles
	return u
}

func TestCreateHashesPasswordAndAudits(t *testing.T) {
	repo := newMockRepo()
	rec := &captureRecorder{}
	svc := NewService(repo, &countingTx{}, rec)

	u, err := svc.Create(context.Background(), CreateInput{
		Username:  "kwame",
		Password:  "s3cret!",
		FirstName: "Kwame",
		LastName:  "Mensah",
		Email:     "kwame@example.org",
		Roles:     []string{auth.RoleAudiologist},
	}, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash == "s3cret!" || u.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}
	if !auth.CheckPassword(u.PasswordHash, "s3cret!") {
		t.Error("stored hash does not verify against the password")
	}
	if len(u.Roles) != 1 || u.Roles[0] != auth.RoleAudiologist {
		t.Errorf("roles = %v, want [%s]", u.Roles, auth.RoleAudiologist)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Table != "users" || e.Action != audit.ActionCreate {
		t.Errorf("audit = %s/%s, want users/%s", e.Table, e.Action, audit.ActionCreate)
	}
	if e.Before != nil {
		t.Error("create should carry no before image")
	}
	if e.ActorID != 2 {
		t.Errorf("actor = %d, want 2", e.ActorID)
	}
	if e.RecordID != u.ID {
		t.Errorf("record id = %d, want %d", e.RecordID, u.ID)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := newMockRepo()
	seedUser(repo, "kwame", "kwame@example.org", auth.RoleAdmin)
	rec := &captureRecorder{}
	svc := NewService(repo, &countingTx{}, rec)

	_, err := svc.Create(context.Background(), CreateInput{
		Username: "kwame",
		Password: "pw",
		Email:    "other@example.org",
		Roles:    []string{auth.RoleCounselor},
	}, 1)
	if !domainerr.IsConflict(err) {
		t.Fatalf("error = %v, want conflict", err)
	}
	want := "Username or email already exists"
	if domainerr.ClientMessage(err) != want {
		t.Errorf("message = %q, want %q", domainerr.ClientMessage(err), want)
	}
	if len(rec.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(rec.entries))
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc := NewService(newMockRepo(), &countingTx{}, &captureRecorder{})

	cases := []CreateInput{
		{Password: "pw", Email: "a@b.c", Roles: []string{auth.RoleAdmin}},
		{Username: "u", Email: "a@b.c", Roles: []string{auth.RoleAdmin}},
		{Username: "u", Password: "pw", Roles: []string{auth.RoleAdmin}},
		{Username: "u", Password: "pw", Email: "a@b.c"},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in, 1); !domainerr.IsPreconditionFailed(err) {
			t.Errorf("case %d: error = %v, want precondition failed", i, err)
		}
	}
}

func TestUpdateEmptyInputSkipsTransaction(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "ama", "ama@example.org", auth.RoleCounselor)
	tx := &countingTx{}
	svc := NewService(repo, tx, &captureRecorder{})

	_, err := svc.Update(context.Background(), u.ID, UpdateInput{}, 1)
	if !domainerr.IsPreconditionFailed(err) {
		t.Fatalf("error = %v, want precondition failed", err)
	}
	if tx.opened != 0 {
		t.Errorf("transactions opened = %d, want 0", tx.opened)
	}
}

func TestUpdateAuditsBeforeAndAfter(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "ama", "ama@example.org", auth.RoleCounselor)
	rec := &captureRecorder{}
	svc := NewService(repo, &countingTx{}, rec)

	email := "ama.new@example.org"
	updated, err := svc.Update(context.Background(), u.ID, UpdateInput{Email: &email}, 3)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != email {
		t.Errorf("email = %q, want %q", updated.Email, email)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	before, ok := e.Before.(*User)
	if !ok {
		t.Fatalf("before image type = %T, want *User", e.Before)
	}
	if before.Email != "ama@example.org" {
		t.Errorf("before email = %q, want original", before.Email)
	}
	after, ok := e.After.(*User)
	if !ok {
		t.Fatalf("after image type = %T, want *User", e.After)
	}
	if after.Email != email {
		t.Errorf("after email = %q, want %q", after.Email, email)
	}
}

func TestUpdateMissingUser(t *testing.T) {
	svc := NewService(newMockRepo(), &countingTx{}, &captureRecorder{})

	first := "X"
	_, err := svc.Update(context.Background(), 99, UpdateInput{FirstName: &first}, 1)
	if !domainerr.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
	if domainerr.ClientMessage(err) != "User not found" {
		t.Errorf("message = %q", domainerr.ClientMessage(err))
	}
}

func TestReplaceRolesAuditsSnapshots(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "ama", "ama@example.org", auth.RoleCounselor)
	rec := &captureRecorder{}
	svc := NewService(repo, &countingTx{}, rec)

	newRoles := []string{auth.RoleAudiologist, auth.RoleSupplyManager}
	if err := svc.ReplaceRoles(context.Background(), u.ID, newRoles, 5); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), u.ID)
	if len(got.Roles) != 2 || got.Roles[0] != auth.RoleAudiologist {
		t.Errorf("roles = %v, want %v", got.Roles, newRoles)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Table != "user_roles" || e.Action != audit.ActionUpdate {
		t.Errorf("audit = %s/%s, want user_roles/%s", e.Table, e.Action, audit.ActionUpdate)
	}
	if e.RecordID != u.ID {
		t.Errorf("record id = %d, want %d", e.RecordID, u.ID)
	}
	before, ok := e.Before.(*RoleSnapshot)
	if !ok {
		t.Fatalf("before image type = %T, want *RoleSnapshot", e.Before)
	}
	if len(before.Roles) != 1 || before.Roles[0] != auth.RoleCounselor {
		t.Errorf("before roles = %v, want [%s]", before.Roles, auth.RoleCounselor)
	}
	after := e.After.(*RoleSnapshot)
	if len(after.Roles) != 2 {
		t.Errorf("after roles = %v, want %v", after.Roles, newRoles)
	}
}

func TestReplaceRolesRequiresRoles(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "ama", "ama@example.org", auth.RoleCounselor)
	tx := &countingTx{}
	svc := NewService(repo, tx, &captureRecorder{})

	if err := svc.ReplaceRoles(context.Background(), u.ID, nil, 1); !domainerr.IsPreconditionFailed(err) {
		t.Fatalf("error = %v, want precondition failed", err)
	}
	if tx.opened != 0 {
		t.Errorf("transactions opened = %d, want 0", tx.opened)
	}
}

func TestDeactivateAudits(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "ama", "ama@example.org", auth.RoleCounselor)
	rec := &captureRecorder{}
	svc := NewService(repo, &countingTx{}, rec)

	got, err := svc.Deactivate(context.Background(), u.ID, 7)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if got.IsActive {
		t.Error("user still active after deactivation")
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != audit.ActionDeactivate {
		t.Errorf("action = %q, want %q", e.Action, audit.ActionDeactivate)
	}
	before := e.Before.(*User)
	if !before.IsActive {
		t.Error("before image should show an active account")
	}
	after := e.After.(*User)
	if after.IsActive {
		t.Error("after image should show a deactivated account")
	}
}

type stubLocations struct {
	location.Repository

	byUser map[int64][]*location.UserLocation
}

func (s *stubLocations) UserLocations(_ context.Context, userID int64) ([]*location.UserLocation, error) {
	return s.byUser[userID], nil
}

func TestLoadPrincipal(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "akosua", "akosua@example.org", auth.RoleCityCoordinator)
	city := "Kumasi"
	cityID := int64(4)
	locs := &stubLocations{byUser: map[int64][]*location.UserLocation{
		u.ID: {{ID: 1, UserID: u.ID, CountryID: 2, CityID: &cityID, CountryName: "Ghana", CityName: &city}},
	}}
	loader := NewPrincipalLoader(repo, locs)

	p, err := loader.LoadPrincipal(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("LoadPrincipal: %v", err)
	}
	if p == nil {
		t.Fatal("principal is nil for an active user")
	}
	if p.Username != "akosua" {
		t.Errorf("username = %q", p.Username)
	}
	if len(p.Locations) != 1 {
		t.Fatalf("locations = %d, want 1", len(p.Locations))
	}
	loc := p.Locations[0]
	if loc.CountryName != "Ghana" || loc.CityName != "Kumasi" {
		t.Errorf("location = %+v", loc)
	}
	if loc.CountryID == nil || *loc.CountryID != 2 {
		t.Error("country id not carried over")
	}
}

func TestLoadPrincipalInactiveOrMissing(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(repo, "akosua", "akosua@example.org", auth.RoleAdmin)
	repo.users[u.ID].IsActive = false
	loader := NewPrincipalLoader(repo, &stubLocations{byUser: map[int64][]*location.UserLocation{}})

	p, err := loader.LoadPrincipal(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("LoadPrincipal: %v", err)
	}
	if p != nil {
		t.Error("deactivated account should resolve to no principal")
	}

	p, err = loader.LoadPrincipal(context.Background(), 99)
	if err != nil {
		t.Fatalf("LoadPrincipal: %v", err)
	}
	if p != nil {
		t.Error("unknown id should resolve to no principal")
	}
}
