package patient

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/phase"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

func strp(s string) *string { return &s }

type mockRepo struct {
	patients map[int64]*Patient
	nextID   int64
	prefix   string
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: map[int64]*Patient{}, prefix: "SHF"}
}

var caseNoPattern = regexp.MustCompile(`^SHF-([0-9]+)$`)

func (r *mockRepo) NextCaseNo(ctx context.Context) (string, error) {
	var max *int64
	for _, p := range r.patients {
		m := caseNoPattern.FindStringSubmatch(p.CaseNo)
		if m == nil {
			continue
		}
		n, _ := strconv.ParseInt(m[1], 10, 64)
		if max == nil || n > *max {
			max = &n
		}
	}
	return nextCaseNo(r.prefix, max), nil
}

func (r *mockRepo) Insert(ctx context.Context, caseNo string, in Input) (*Patient, error) {
	for _, p := range r.patients {
		if p.CaseNo == caseNo {
			return nil, domainerr.Conflict("Case number %s already exists", caseNo)
		}
	}
	r.nextID++
	p := &Patient{ID: r.nextID, CaseNo: caseNo, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	p.CityVillage = in.CityVillage
	p.RegionDistrict = in.RegionDistrict
	r.patients[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *mockRepo) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *mockRepo) Update(ctx context.Context, id int64, in Input) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("no row for patient %d", id)
	}
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.CityVillage != nil {
		p.CityVillage = in.CityVillage
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *mockRepo) List(ctx context.Context, f ListFilter, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	return nil, 0, nil
}

func (r *mockRepo) ListByPhase(ctx context.Context, phaseID int64, status string, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	return nil, 0, nil
}

type mockPhaseRepo struct {
	rows map[int64][]*phase.PatientPhase
	repo *mockRepo
}

func (r *mockPhaseRepo) ListPhases(ctx context.Context) ([]*phase.Phase, error) { return nil, nil }

func (r *mockPhaseRepo) ListByPatient(ctx context.Context, patientID int64) ([]*phase.PatientPhase, error) {
	return r.rows[patientID], nil
}

func (r *mockPhaseRepo) Get(ctx context.Context, patientID, phaseID int64) (*phase.PatientPhase, error) {
	for _, pp := range r.rows[patientID] {
		if pp.PhaseID == phaseID {
			return pp, nil
		}
	}
	return nil, nil
}

func (r *mockPhaseRepo) Insert(ctx context.Context, pp *phase.PatientPhase) error {
	for _, existing := range r.rows[pp.PatientID] {
		if existing.PhaseID == pp.PhaseID {
			return domainerr.Conflict("Patient is already in Phase %d", pp.PhaseID)
		}
	}
	if r.rows == nil {
		r.rows = map[int64][]*phase.PatientPhase{}
	}
	pp.ID = int64(len(r.rows[pp.PatientID]) + 1)
	r.rows[pp.PatientID] = append(r.rows[pp.PatientID], pp)
	return nil
}

func (r *mockPhaseRepo) Update(ctx context.Context, pp *phase.PatientPhase) error { return nil }

func (r *mockPhaseRepo) PatientExists(ctx context.Context, patientID int64) (bool, error) {
	_, ok := r.repo.patients[patientID]
	return ok, nil
}

type countingTx struct {
	calls int
}

func (t *countingTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(ctx context.Context, e audit.Entry) (int64, error) {
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

func newService(repo *mockRepo) (*Service, *mockPhaseRepo, *countingTx, *captureRecorder) {
	phases := &mockPhaseRepo{rows: map[int64][]*phase.PatientPhase{}, repo: repo}
	tx := &countingTx{}
	rec := &captureRecorder{}
	return NewService(repo, phases, tx, rec), phases, tx, rec
}

func TestNextCaseNo(t *testing.T) {
	three := int64(3)
	cases := []struct {
		max  *int64
		want string
	}{
		{nil, "SHF-000001"},
		{&three, "SHF-000004"},
	}
	for _, tc := range cases {
		if got := nextCaseNo("SHF", tc.max); got != tc.want {
			t.Errorf("nextCaseNo(SHF, %v) = %q, want %q", tc.max, got, tc.want)
		}
	}
}

func TestCreateAssignsSequentialCaseNo(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, _ := newService(repo)

	in := Input{FirstName: strp("Ama"), LastName: strp("Mensah")}
	p, err := svc.Create(context.Background(), in, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.CaseNo != "SHF-000001" {
		t.Errorf("case no = %q, want SHF-000001", p.CaseNo)
	}
}

func TestCreateSkipsGapsInCaseNos(t *testing.T) {
	repo := newMockRepo()
	repo.patients[10] = &Patient{ID: 10, CaseNo: "SHF-000001"}
	repo.patients[11] = &Patient{ID: 11, CaseNo: "SHF-000003"}
	svc, _, _, _ := newService(repo)

	p, err := svc.Create(context.Background(), Input{FirstName: strp("Kwame"), LastName: strp("Osei")}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.CaseNo != "SHF-000004" {
		t.Errorf("case no = %q, want SHF-000004", p.CaseNo)
	}
}

func TestCreateKeepsProvidedCaseNo(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, _ := newService(repo)

	p, err := svc.Create(context.Background(),
		Input{CaseNo: strp("SHF-000500"), FirstName: strp("Ama"), LastName: strp("Mensah")}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.CaseNo != "SHF-000500" {
		t.Errorf("case no = %q, want SHF-000500", p.CaseNo)
	}
}

func TestCreateStartsFirstPhase(t *testing.T) {
	repo := newMockRepo()
	svc, phases, _, rec := newService(repo)

	p, err := svc.Create(context.Background(), Input{FirstName: strp("Ama"), LastName: strp("Mensah")}, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pps := phases.rows[p.ID]
	if len(pps) != 1 || pps[0].PhaseID != phase.First || pps[0].Status != phase.StatusInProgress {
		t.Fatalf("phase rows = %+v, want one In Progress Phase 1 row", pps)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != audit.ActionCreate || e.Table != "patients" {
		t.Errorf("audit = %s on %s, want CREATE on patients", e.Action, e.Table)
	}
	if e.Before != nil {
		t.Error("create should carry no before-image")
	}
	if e.ActorID != 4 {
		t.Errorf("actor = %d, want 4", e.ActorID)
	}
}

func TestCreateRequiresNames(t *testing.T) {
	repo := newMockRepo()
	svc, _, tx, _ := newService(repo)

	_, err := svc.Create(context.Background(), Input{FirstName: strp("Ama")}, 1)
	if !domainerr.IsPreconditionFailed(err) {
		t.Fatalf("error = %v, want precondition failed", err)
	}
	if tx.calls != 0 {
		t.Error("validation failure should not open a transaction")
	}
}

func TestUpdateEmptyPayloadRejectedBeforeTx(t *testing.T) {
	repo := newMockRepo()
	svc, _, tx, rec := newService(repo)

	_, err := svc.Update(context.Background(), 1, Input{}, 1)
	if !domainerr.IsPreconditionFailed(err) {
		t.Fatalf("error = %v, want precondition failed", err)
	}
	if tx.calls != 0 {
		t.Error("empty update should not open a transaction")
	}
	if len(rec.entries) != 0 {
		t.Error("empty update should not be audited")
	}
}

func TestUpdateMissingPatient(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, _ := newService(repo)

	_, err := svc.Update(context.Background(), 42, Input{FirstName: strp("Yaa")}, 1)
	if !domainerr.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
	if domainerr.ClientMessage(err) != "Patient not found" {
		t.Errorf("message = %q", domainerr.ClientMessage(err))
	}
}

func TestUpdateAuditsBeforeAndAfter(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, rec := newService(repo)

	p, err := svc.Create(context.Background(), Input{FirstName: strp("Ama"), LastName: strp("Mensah")}, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(context.Background(), p.ID, Input{FirstName: strp("Akosua")}, 2); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(rec.entries))
	}
	e := rec.entries[1]
	if e.Action != audit.ActionUpdate {
		t.Errorf("action = %s, want UPDATE", e.Action)
	}
	if e.Before.(*Patient).FirstName != "Ama" {
		t.Errorf("before name = %q, want Ama", e.Before.(*Patient).FirstName)
	}
	if e.After.(*Patient).FirstName != "Akosua" {
		t.Errorf("after name = %q, want Akosua", e.After.(*Patient).FirstName)
	}
}

func TestGetAttachesPhases(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, _ := newService(repo)

	created, err := svc.Create(context.Background(), Input{FirstName: strp("Ama"), LastName: strp("Mensah")}, 1)
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Phases) != 1 || got.Phases[0].PhaseID != phase.First {
		t.Fatalf("phases = %+v, want the Phase 1 row", got.Phases)
	}
}

func TestGetMissingPatient(t *testing.T) {
	repo := newMockRepo()
	svc, _, _, _ := newService(repo)

	_, err := svc.Get(context.Background(), 9)
	if !domainerr.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}
