package medications

import "time"

// ScheduleEntry es una hora objetivo del día (reloj de pared).
// Una medicación guarda solo horas del día; el día concreto se deriva
// siempre respecto de "ahora" (ver schedule.go).
type ScheduleEntry struct {
	Hour   int // 0–23
	Minute int // 0–59
}

func (e ScheduleEntry) Valid() bool {
	return e.Hour >= 0 && e.Hour <= 23 && e.Minute >= 0 && e.Minute <= 59
}

// onDay materializa la entrada en un instante concreto del día dado.
func (e ScheduleEntry) onDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), e.Hour, e.Minute, 0, 0, day.Location())
}

// DoseRecord es una toma registrada. Inmutable una vez creada; solo se
// destruye por borrado explícito del usuario.
type DoseRecord struct {
	ID      string
	TakenAt time.Time

	// ScheduledFor vincula la toma con la ocurrencia programada que
	// satisface (día + hora concretos). Nil para medicaciones "a demanda".
	ScheduledFor *time.Time

	// ProofImagePath es la clave del objeto con la foto de prueba,
	// si la medicación la exige. Vacío si no aplica.
	ProofImagePath string
}

// Medication representa una medicación del usuario con su pauta diaria
// y el historial de tomas.
type Medication struct {
	ID          string
	Name        string
	Description string

	// Schedule vacío => medicación "a demanda" (sin pauta). Ese es el
	// centinela que distingue programada vs. no programada.
	Schedule []ScheduleEntry

	Notify            bool
	Active            bool
	RequirePhotoProof bool

	// DoseRecord se mantiene ordenado ascendente por TakenAt (invariante,
	// no cache; ver ledger.go).
	DoseRecord []DoseRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAsNeeded indica si la medicación no tiene pauta horaria.
func (m Medication) IsAsNeeded() bool {
	return len(m.Schedule) == 0
}

// Clone devuelve una copia profunda. Los adapters y el hub de cambios
// entregan siempre copias para que ningún caller mute estado compartido.
func (m Medication) Clone() Medication {
	out := m
	out.Schedule = append([]ScheduleEntry(nil), m.Schedule...)
	out.DoseRecord = append([]DoseRecord(nil), m.DoseRecord...)
	return out
}
