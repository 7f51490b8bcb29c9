package medications

import (
	"errors"
	"testing"
)

func TestAddTakenDose_KeepsAscendingOrder(t *testing.T) {
	var m Medication
	m.AddTakenDose(DoseRecord{ID: "late", TakenAt: at(20, 0)})
	m.AddTakenDose(DoseRecord{ID: "early", TakenAt: at(8, 0)})
	m.AddTakenDose(DoseRecord{ID: "mid", TakenAt: at(14, 0)})

	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if m.DoseRecord[i].ID != id {
			t.Fatalf("DoseRecord[%d] = %s, want %s", i, m.DoseRecord[i].ID, id)
		}
	}
}

func TestRemoveDoseAt(t *testing.T) {
	var m Medication
	m.AddTakenDose(DoseRecord{ID: "a", TakenAt: at(8, 0)})
	m.AddTakenDose(DoseRecord{ID: "b", TakenAt: at(14, 0)})

	if err := m.RemoveDoseAt(0); err != nil {
		t.Fatalf("RemoveDoseAt(0): %v", err)
	}
	if len(m.DoseRecord) != 1 || m.DoseRecord[0].ID != "b" {
		t.Fatalf("unexpected ledger after remove: %+v", m.DoseRecord)
	}

	// índice ya inválido: error explícito, el ledger no cambia
	if err := m.RemoveDoseAt(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("RemoveDoseAt(1): err = %v, want ErrIndexOutOfRange", err)
	}
	if err := m.RemoveDoseAt(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("RemoveDoseAt(-1): err = %v, want ErrIndexOutOfRange", err)
	}
	if len(m.DoseRecord) != 1 {
		t.Fatalf("failed remove must not mutate the ledger: %+v", m.DoseRecord)
	}
}

func TestClosestDoseAlreadyTaken(t *testing.T) {
	m := scheduled(ScheduleEntry{Hour: 8})
	now := at(8, 5)

	if m.ClosestDoseAlreadyTaken(now) {
		t.Fatal("no record yet, closest must not count as taken")
	}

	closest, err := m.ClosestDose(now)
	if err != nil {
		t.Fatalf("ClosestDose: %v", err)
	}
	m.AddTakenDose(DoseRecord{ID: "r1", TakenAt: now, ScheduledFor: &closest})

	if !m.ClosestDoseAlreadyTaken(now) {
		t.Fatal("record linked to closest occurrence must count as taken")
	}
	if m.HasDoseRemaining(now) {
		t.Fatal("confirmed slot must not owe a dose")
	}

	// una toma sin vínculo (a demanda migrada) no confirma el hueco
	m.DoseRecord = []DoseRecord{{ID: "r2", TakenAt: now}}
	if m.ClosestDoseAlreadyTaken(now) {
		t.Fatal("unlinked record must not confirm the scheduled slot")
	}
}

func TestHasDoseRemaining_AsNeededAlwaysTrue(t *testing.T) {
	m := Medication{ID: "m1", Name: "PRN"}
	now := at(12, 0)

	m.AddTakenDose(DoseRecord{ID: "r1", TakenAt: now})
	if !m.HasDoseRemaining(now) {
		t.Fatal("as-needed medication always owes a dose")
	}
	if m.ClosestDoseAlreadyTaken(now) {
		t.Fatal("as-needed medication has no scheduled slot to confirm")
	}
}
