package medications

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-reminder/internal/platform/workqueue"
	"med-reminder/internal/ports/alarms"
	"med-reminder/internal/ports/notify"
)

type fakeRepo struct {
	meds map[string]Medication
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{meds: map[string]Medication{}}
}

func (r *fakeRepo) Create(_ context.Context, m Medication) error {
	r.meds[m.ID] = m.Clone()
	return nil
}

func (r *fakeRepo) Update(_ context.Context, meds ...Medication) error {
	for _, m := range meds {
		if _, ok := r.meds[m.ID]; !ok {
			return ErrNotFound
		}
		r.meds[m.ID] = m.Clone()
	}
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (Medication, error) {
	m, ok := r.meds[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m.Clone(), nil
}

func (r *fakeRepo) List(_ context.Context) ([]Medication, error) {
	out := make([]Medication, 0, len(r.meds))
	for _, m := range r.meds {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.meds[id]; !ok {
		return ErrNotFound
	}
	delete(r.meds, id)
	return nil
}

func (r *fakeRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.meds[id]
	return ok, nil
}

type fakeAlarms struct {
	armed    map[string]time.Time
	payloads map[string]alarms.Payload
	canceled int
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{armed: map[string]time.Time{}, payloads: map[string]alarms.Payload{}}
}

func (a *fakeAlarms) Arm(id string, fireAt time.Time, p alarms.Payload) error {
	a.armed[id] = fireAt
	a.payloads[id] = p
	return nil
}

func (a *fakeAlarms) Cancel(id string) {
	delete(a.armed, id)
	delete(a.payloads, id)
	a.canceled++
}

type fakeNotifier struct {
	posted    map[string]notify.Notification
	withdrawn int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{posted: map[string]notify.Notification{}}
}

func (n *fakeNotifier) Post(id string, notif notify.Notification) error {
	n.posted[id] = notif
	return nil
}

func (n *fakeNotifier) Withdraw(id string) error {
	delete(n.posted, id)
	n.withdrawn++
	return nil
}

func newTestService(t *testing.T, now time.Time) (*Service, *fakeRepo, *fakeAlarms, *fakeNotifier) {
	t.Helper()

	repo := newFakeRepo()
	sched := newFakeAlarms()
	notifier := newFakeNotifier()
	queue := workqueue.New(8)
	t.Cleanup(queue.Close)

	svc := NewService(repo, sched, notifier, queue, nil)
	svc.now = func() time.Time { return now }
	return svc, repo, sched, notifier
}

func TestService_Create_ArmsAlarmAtNextDose(t *testing.T) {
	now := at(6, 0)
	svc, _, sched, _ := newTestService(t, now)

	m, err := svc.Create(context.Background(), CreateInput{
		Name:     "Levothyroxine",
		Schedule: []ScheduleEntry{{Hour: 7}, {Hour: 20}},
		Notify:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !m.Active {
		t.Fatal("new medication must start active")
	}

	fireAt, ok := sched.armed[m.ID]
	if !ok {
		t.Fatal("expected alarm armed for notify medication")
	}
	if !fireAt.Equal(at(7, 0)) {
		t.Fatalf("alarm armed at %v, want %v", fireAt, at(7, 0))
	}
	if sched.payloads[m.ID].Kind != alarms.KindSchedule {
		t.Fatalf("alarm kind = %v, want schedule", sched.payloads[m.ID].Kind)
	}
}

func TestService_Create_NoAlarmWhenNotifyOff(t *testing.T) {
	svc, _, sched, _ := newTestService(t, at(6, 0))

	m, err := svc.Create(context.Background(), CreateInput{
		Name:     "Vitamin D",
		Schedule: []ScheduleEntry{{Hour: 9}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := sched.armed[m.ID]; ok {
		t.Fatal("notify off must not arm an alarm")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t, at(6, 0))

	if _, err := svc.Create(context.Background(), CreateInput{Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name: err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{
		Name:     "Bad",
		Schedule: []ScheduleEntry{{Hour: 24}},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid entry: err = %v, want ErrInvalidInput", err)
	}
}

func TestService_Update_PatchSemantics(t *testing.T) {
	svc, _, sched, notifier := newTestService(t, at(6, 0))

	m, err := svc.Create(context.Background(), CreateInput{
		Name:        "Metformin",
		Description: "with food",
		Schedule:    []ScheduleEntry{{Hour: 8}},
		Notify:      true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Metformin 850"
	got, err := svc.Update(context.Background(), m.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != name || got.Description != "with food" {
		t.Fatalf("patch touched wrong fields: %+v", got)
	}

	// desactivar: cancela el despertador y retira la notificación
	inactive := false
	if _, err := svc.Update(context.Background(), m.ID, UpdateInput{Active: &inactive}); err != nil {
		t.Fatalf("Update inactive: %v", err)
	}
	if _, ok := sched.armed[m.ID]; ok {
		t.Fatal("inactive medication must have no armed alarm")
	}
	if notifier.withdrawn == 0 {
		t.Fatal("deactivation must withdraw any standing notification")
	}
}

func TestService_SetNotify_TogglesAlarm(t *testing.T) {
	svc, _, sched, _ := newTestService(t, at(6, 0))

	m, err := svc.Create(context.Background(), CreateInput{
		Name:     "Lisinopril",
		Schedule: []ScheduleEntry{{Hour: 7}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := sched.armed[m.ID]; ok {
		t.Fatal("precondition: no alarm while notify off")
	}

	if _, err := svc.SetNotify(context.Background(), m.ID, true); err != nil {
		t.Fatalf("SetNotify on: %v", err)
	}
	if fireAt := sched.armed[m.ID]; !fireAt.Equal(at(7, 0)) {
		t.Fatalf("alarm at %v, want %v", fireAt, at(7, 0))
	}

	if _, err := svc.SetNotify(context.Background(), m.ID, false); err != nil {
		t.Fatalf("SetNotify off: %v", err)
	}
	if _, ok := sched.armed[m.ID]; ok {
		t.Fatal("notify off must cancel the alarm")
	}
}

func TestService_TakeDose_LinksClosestOccurrence(t *testing.T) {
	now := at(8, 10)
	svc, repo, _, notifier := newTestService(t, now)

	m, err := svc.Create(context.Background(), CreateInput{
		Name:     "Amoxicillin",
		Schedule: []ScheduleEntry{{Hour: 8}, {Hour: 16}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.TakeDose(context.Background(), m.ID, "")
	if err != nil {
		t.Fatalf("TakeDose: %v", err)
	}
	if len(got.DoseRecord) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got.DoseRecord))
	}
	r := got.DoseRecord[0]
	if r.ScheduledFor == nil || !r.ScheduledFor.Equal(at(8, 0)) {
		t.Fatalf("ScheduledFor = %v, want %v", r.ScheduledFor, at(8, 0))
	}
	if !r.TakenAt.Equal(now) {
		t.Fatalf("TakenAt = %v, want %v", r.TakenAt, now)
	}
	if notifier.withdrawn == 0 {
		t.Fatal("taking a dose must withdraw the standing notification")
	}

	// persistido, no solo en memoria del servicio
	stored, err := repo.GetByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.DoseRecord) != 1 {
		t.Fatalf("record not persisted: %+v", stored.DoseRecord)
	}

	// el mismo hueco no se confirma dos veces
	if _, err := svc.TakeDose(context.Background(), m.ID, ""); !errors.Is(err, ErrDoseAlreadyTaken) {
		t.Fatalf("duplicate take: err = %v, want ErrDoseAlreadyTaken", err)
	}
}

func TestService_TakeDose_ProofRequired(t *testing.T) {
	svc, _, _, _ := newTestService(t, at(9, 0))

	m, err := svc.Create(context.Background(), CreateInput{
		Name:              "Methotrexate",
		Schedule:          []ScheduleEntry{{Hour: 9}},
		RequirePhotoProof: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.TakeDose(context.Background(), m.ID, ""); !errors.Is(err, ErrProofRequired) {
		t.Fatalf("no proof: err = %v, want ErrProofRequired", err)
	}

	got, err := svc.TakeDose(context.Background(), m.ID, "proofs/m/photo.jpg")
	if err != nil {
		t.Fatalf("TakeDose with proof: %v", err)
	}
	if got.DoseRecord[0].ProofImagePath != "proofs/m/photo.jpg" {
		t.Fatalf("proof path not recorded: %+v", got.DoseRecord[0])
	}
}

func TestService_TakeDose_AsNeeded(t *testing.T) {
	svc, _, _, _ := newTestService(t, at(12, 0))

	m, err := svc.Create(context.Background(), CreateInput{Name: "Ibuprofen"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := svc.TakeDose(context.Background(), m.ID, "")
		if err != nil {
			t.Fatalf("TakeDose #%d: %v", i+1, err)
		}
		if got.DoseRecord[len(got.DoseRecord)-1].ScheduledFor != nil {
			t.Fatal("as-needed dose must not link an occurrence")
		}
	}
}

func TestService_RemoveDoseRecord(t *testing.T) {
	svc, _, _, _ := newTestService(t, at(12, 0))

	m, err := svc.Create(context.Background(), CreateInput{Name: "Ibuprofen"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.TakeDose(context.Background(), m.ID, ""); err != nil {
		t.Fatalf("TakeDose: %v", err)
	}

	got, err := svc.RemoveDoseRecord(context.Background(), m.ID, 0)
	if err != nil {
		t.Fatalf("RemoveDoseRecord: %v", err)
	}
	if len(got.DoseRecord) != 0 {
		t.Fatalf("expected empty ledger, got %+v", got.DoseRecord)
	}

	if _, err := svc.RemoveDoseRecord(context.Background(), m.ID, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("stale index: err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestService_Delete_CancelsAlarmAndNotification(t *testing.T) {
	svc, repo, sched, notifier := newTestService(t, at(6, 0))

	m, err := svc.Create(context.Background(), CreateInput{
		Name:     "Warfarin",
		Schedule: []ScheduleEntry{{Hour: 18}},
		Notify:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := sched.armed[m.ID]; ok {
		t.Fatal("delete must cancel the alarm")
	}
	if notifier.withdrawn == 0 {
		t.Fatal("delete must withdraw the notification")
	}
	if _, err := repo.GetByID(context.Background(), m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestService_PublishesChanges(t *testing.T) {
	svc, _, _, _ := newTestService(t, at(6, 0))

	changes, cancel := svc.Subscribe()
	defer cancel()

	m, err := svc.Create(context.Background(), CreateInput{Name: "Aspirin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case ch := <-changes:
		if ch.Type != ChangeUpdated || ch.Medication.ID != m.ID {
			t.Fatalf("unexpected change: %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a change event after create")
	}

	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	select {
	case ch := <-changes:
		if ch.Type != ChangeDeleted {
			t.Fatalf("unexpected change type: %v", ch.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a change event after delete")
	}
}
