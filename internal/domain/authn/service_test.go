package authn

import (
	"context"
	"testing"
	"time"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/user"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type mockUsers struct {
	user.Repository

	byName map[string]*user.User
}

func (m *mockUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(_ context.Context, e audit.Entry) (int64, error) {
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

const testSecret = "test-secret"

func newTestService(rec *captureRecorder, users ...*user.User) *Service {
	byName := map[string]*user.User{}
	for _, u := range users {
		byName[u.Username] = u
	}
	return NewService(&mockUsers{byName: byName}, rec, testSecret, time.Hour)
}

func activeUser(t *testing.T, username, password string) *user.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return &user.User{
		ID:           7,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []string{auth.RoleAdmin},
	}
}

func TestLoginIssuesTokenAndAudits(t *testing.T) {
	rec := &captureRecorder{}
	svc := newTestService(rec, activeUser(t, "kwame", "pw123"))

	session, err := svc.Login(context.Background(), "kwame", "pw123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := auth.ParseToken(testSecret, session.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "kwame" {
		t.Errorf("claims = %d/%q", claims.UserID, claims.Username)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != audit.ActionLogin || e.Table != "users" {
		t.Errorf("audit = %s/%s", e.Table, e.Action)
	}
	if e.RecordID != 7 || e.ActorID != 7 {
		t.Errorf("record/actor = %d/%d, want 7/7", e.RecordID, e.ActorID)
	}
}

func TestLoginRejectsWithOneMessage(t *testing.T) {
	rec := &captureRecorder{}
	inactive := activeUser(t, "retired", "pw123")
	inactive.IsActive = false
	svc := newTestService(rec, activeUser(t, "kwame", "pw123"), inactive)

	cases := []struct {
		name               string
		username, password string
	}{
		{"unknown user", "nobody", "pw123"},
		{"wrong password", "kwame", "wrong"},
		{"deactivated account", "retired", "pw123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.username, tc.password)
			if !domainerr.IsUnauthorized(err) {
				t.Fatalf("error = %v, want unauthorized", err)
			}
			if domainerr.ClientMessage(err) != "Invalid credentials" {
				t.Errorf("message = %q", domainerr.ClientMessage(err))
			}
		})
	}
	if len(rec.entries) != 0 {
		t.Errorf("audit entries = %d, want 0 for failed logins", len(rec.entries))
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestService(&captureRecorder{})

	if _, err := svc.Login(context.Background(), "", "pw"); !domainerr.IsPreconditionFailed(err) {
		t.Errorf("missing username: error = %v", err)
	}
	if _, err := svc.Login(context.Background(), "kwame", ""); !domainerr.IsPreconditionFailed(err) {
		t.Errorf("missing password: error = %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc := newTestService(&captureRecorder{})
	p := &auth.Principal{UserID: 9, Username: "akosua"}

	token, err := svc.Refresh(context.Background(), p)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := auth.ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 9 || claims.Username != "akosua" {
		t.Errorf("claims = %d/%q", claims.UserID, claims.Username)
	}
}

func TestLogoutAudits(t *testing.T) {
	rec := &captureRecorder{}
	svc := newTestService(rec)

	if err := svc.Logout(context.Background(), 7); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	if rec.entries[0].Action != audit.ActionLogout {
		t.Errorf("action = %q", rec.entries[0].Action)
	}
}
