package record

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type mockRepo struct {
	records  map[int64]*Record
	patients map[int64]bool
	nextID   int64
}

func newMockRepo(patients ...int64) *mockRepo {
	r := &mockRepo{records: map[int64]*Record{}, patients: map[int64]bool{}}
	for _, p := range patients {
		r.patients[p] = true
	}
	return r
}

func (r *mockRepo) Insert(ctx context.Context, rec *Record) error {
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *mockRepo) GetByID(ctx context.Context, id int64) (*Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *mockRepo) Update(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *mockRepo) ListByType(ctx context.Context, recordType string, patientID int64, limit, offset int) ([]*Record, int, error) {
	var recs []*Record
	for _, rec := range r.records {
		if rec.Type != recordType {
			continue
		}
		if patientID != 0 && rec.PatientID != patientID {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, len(recs), nil
}

func (r *mockRepo) ListByPatientPhase(ctx context.Context, patientID, phaseID int64) ([]*Record, error) {
	var recs []*Record
	for _, rec := range r.records {
		if rec.PatientID == patientID && rec.PhaseID == phaseID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *mockRepo) PatientExists(ctx context.Context, patientID int64) (bool, error) {
	return r.patients[patientID], nil
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(ctx context.Context, e audit.Entry) (int64, error) {
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

func mustLookup(t *testing.T, phase int64, slug string) Type {
	t.Helper()
	typ, ok := Lookup(phase, slug)
	if !ok {
		t.Fatalf("type phase%d/%s not registered", phase, slug)
	}
	return typ
}

func TestRegistryCoversAllPhases(t *testing.T) {
	want := map[int64][]string{
		1: {"registration", "ear-screening", "hearing-screening", "ear-impressions", "final-qc"},
		2: {"registration", "fitting-table", "fitting", "counseling", "final-qc"},
		3: {"registration", "ear-screening", "aftercare-assessment", "final-qc"},
	}
	for phase, slugs := range want {
		for _, slug := range slugs {
			if _, ok := Lookup(phase, slug); !ok {
				t.Errorf("phase %d missing type %q", phase, slug)
			}
		}
	}
	if len(Types) != 14 {
		t.Errorf("registry has %d types, want 14", len(Types))
	}
}

func TestTypeName(t *testing.T) {
	typ := mustLookup(t, 2, "fitting-table")
	if typ.Name() != "phase2_fitting_table" {
		t.Errorf("name = %q, want phase2_fitting_table", typ.Name())
	}
}

func TestPhaseRolesUnion(t *testing.T) {
	roles := PhaseRoles(2)
	for _, want := range []string{auth.RoleAdmin, auth.RolePhase2Specialist, auth.RoleAudiologist, auth.RoleCounselor} {
		found := false
		for _, r := range roles {
			if r == want {
				found = true
			}
		}
		if !found {
			t.Errorf("phase 2 roles missing %q", want)
		}
	}
}

func TestCreateRecordsAudit(t *testing.T) {
	repo := newMockRepo(1)
	rec := &captureRecorder{}
	svc := NewService(repo, passthroughTx{}, rec)
	typ := mustLookup(t, 1, "ear-screening")

	in := CreateInput{PatientID: 1, Data: json.RawMessage(`{"left_ear":"clear"}`)}
	created, err := svc.Create(context.Background(), typ, in, 9)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Type != "phase1_ear_screening" {
		t.Errorf("type = %q", created.Type)
	}
	if created.PhaseID != 1 {
		t.Errorf("phase = %d, want 1", created.PhaseID)
	}
	if created.CompletedBy == nil || *created.CompletedBy != 9 {
		t.Errorf("completed by = %v, want 9", created.CompletedBy)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Table != "phase1_ear_screening" || e.Action != audit.ActionCreate {
		t.Errorf("audit = %s on %s", e.Action, e.Table)
	}
	if e.Before != nil {
		t.Error("create should carry no before-image")
	}
}

func TestCreateUnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx{}, &captureRecorder{})
	typ := mustLookup(t, 1, "registration")

	_, err := svc.Create(context.Background(), typ,
		CreateInput{PatientID: 5, Data: json.RawMessage(`{}`)}, 1)
	if !domainerr.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestCreateAllowedWithoutPhaseRow(t *testing.T) {
	// Detail records have never required the patient to hold the phase;
	// only patient existence is checked.
	repo := newMockRepo(1)
	svc := NewService(repo, passthroughTx{}, &captureRecorder{})
	typ := mustLookup(t, 3, "final-qc")

	if _, err := svc.Create(context.Background(), typ,
		CreateInput{PatientID: 1, Data: json.RawMessage(`{"passed":true}`)}, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestUpdateEmptyPayload(t *testing.T) {
	svc := NewService(newMockRepo(1), passthroughTx{}, &captureRecorder{})
	typ := mustLookup(t, 1, "registration")

	for _, data := range []string{"", "null", "{}"} {
		_, err := svc.Update(context.Background(), typ, 1, UpdateInput{Data: json.RawMessage(data)}, 1)
		if !domainerr.IsPreconditionFailed(err) {
			t.Errorf("data %q: error = %v, want precondition failed", data, err)
		}
	}
}

func TestUpdateWrongTypeNotFound(t *testing.T) {
	repo := newMockRepo(1)
	rec := &captureRecorder{}
	svc := NewService(repo, passthroughTx{}, rec)

	created, err := svc.Create(context.Background(), mustLookup(t, 1, "registration"),
		CreateInput{PatientID: 1, Data: json.RawMessage(`{}`)}, 1)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(context.Background(), mustLookup(t, 1, "final-qc"),
		created.ID, UpdateInput{Data: json.RawMessage(`{"x":1}`)}, 1)
	if !domainerr.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestUpdateAuditsBeforeAndAfter(t *testing.T) {
	repo := newMockRepo(1)
	rec := &captureRecorder{}
	svc := NewService(repo, passthroughTx{}, rec)
	typ := mustLookup(t, 2, "counseling")

	created, err := svc.Create(context.Background(), typ,
		CreateInput{PatientID: 1, Data: json.RawMessage(`{"sessions":1}`)}, 1)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(context.Background(), typ, created.ID,
		UpdateInput{Data: json.RawMessage(`{"sessions":2}`)}, 3)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if string(updated.Data) != `{"sessions":2}` {
		t.Errorf("data = %s", updated.Data)
	}
	if *updated.CompletedBy != 3 {
		t.Errorf("completed by = %d, want 3", *updated.CompletedBy)
	}

	e := rec.entries[len(rec.entries)-1]
	if e.Action != audit.ActionUpdate {
		t.Errorf("action = %s, want UPDATE", e.Action)
	}
	if string(e.Before.(*Record).Data) != `{"sessions":1}` {
		t.Errorf("before data = %s", e.Before.(*Record).Data)
	}
	if string(e.After.(*Record).Data) != `{"sessions":2}` {
		t.Errorf("after data = %s", e.After.(*Record).Data)
	}
}

func TestPhaseDataGroupsBySlug(t *testing.T) {
	repo := newMockRepo(1)
	svc := NewService(repo, passthroughTx{}, &captureRecorder{})

	if _, err := svc.Create(context.Background(), mustLookup(t, 1, "registration"),
		CreateInput{PatientID: 1, Data: json.RawMessage(`{}`)}, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), mustLookup(t, 1, "ear-screening"),
		CreateInput{PatientID: 1, Data: json.RawMessage(`{}`)}, 1); err != nil {
		t.Fatal(err)
	}

	data, err := svc.PhaseData(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("PhaseData: %v", err)
	}
	if len(data["registration"]) != 1 || len(data["ear-screening"]) != 1 {
		t.Errorf("grouping wrong: %+v", data)
	}
	// Every phase 1 slug is present even when empty.
	for _, slug := range []string{"hearing-screening", "ear-impressions", "final-qc"} {
		if _, ok := data[slug]; !ok {
			t.Errorf("slug %q missing from phase data", slug)
		}
	}
}
