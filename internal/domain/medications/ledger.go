package medications

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrIndexOutOfRange: borrado de una toma con índice ya inválido
	// (la fila dejó de existir). El caller lo trata como no-op visible.
	ErrIndexOutOfRange = errors.New("dose record index out of range")
)

// AddTakenDose inserta una toma manteniendo el orden ascendente por
// TakenAt.
func (m *Medication) AddTakenDose(r DoseRecord) {
	i := sort.Search(len(m.DoseRecord), func(i int) bool {
		return m.DoseRecord[i].TakenAt.After(r.TakenAt)
	})
	m.DoseRecord = append(m.DoseRecord, DoseRecord{})
	copy(m.DoseRecord[i+1:], m.DoseRecord[i:])
	m.DoseRecord[i] = r
}

// RemoveDoseAt borra exactamente la toma i, preservando el orden del
// resto. No tiene efectos en cascada.
func (m *Medication) RemoveDoseAt(i int) error {
	if i < 0 || i >= len(m.DoseRecord) {
		return ErrIndexOutOfRange
	}
	m.DoseRecord = append(m.DoseRecord[:i], m.DoseRecord[i+1:]...)
	return nil
}

// DoseTakenFor indica si alguna toma satisface exactamente la ocurrencia
// programada indicada (igualdad de instante, sin ventana). Evita la
// doble confirmación del mismo hueco.
func (m Medication) DoseTakenFor(scheduled time.Time) bool {
	for _, r := range m.DoseRecord {
		if r.ScheduledFor != nil && r.ScheduledFor.Equal(scheduled) {
			return true
		}
	}
	return false
}

// ClosestDoseAlreadyTaken indica si la ocurrencia más cercana a now ya
// fue confirmada. Para medicaciones a demanda no hay hueco programado,
// así que siempre es false.
func (m Medication) ClosestDoseAlreadyTaken(now time.Time) bool {
	if m.IsAsNeeded() {
		return false
	}
	closest, err := m.ClosestDose(now)
	if err != nil {
		return false
	}
	return m.DoseTakenFor(closest)
}

// HasDoseRemaining indica si todavía se debe una dosis. En el modelo de
// una-toma-por-hueco equivale a "el hueco más cercano no tiene toma";
// a demanda siempre queda dosis por registrar.
func (m Medication) HasDoseRemaining(now time.Time) bool {
	if m.IsAsNeeded() {
		return true
	}
	return !m.ClosestDoseAlreadyTaken(now)
}
