package medications

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrNotScheduled: se pidió ClosestDose/NextDose sobre una medicación
	// a demanda. Es violación de precondición: el caller debe comprobar
	// IsAsNeeded() antes.
	ErrNotScheduled = errors.New("medication is not scheduled")
)

// ClosestDose devuelve la ocurrencia programada más cercana a now,
// pasada o futura. Considera las ocurrencias de ayer/hoy/mañana de cada
// entrada; con distancias iguales gana la ocurrencia pasada (la dosis
// que el usuario podría tener pendiente de confirmar).
func (m Medication) ClosestDose(now time.Time) (time.Time, error) {
	if m.IsAsNeeded() {
		return time.Time{}, ErrNotScheduled
	}

	var best time.Time
	var bestDist time.Duration
	found := false

	for _, e := range m.Schedule {
		for _, dayOffset := range []int{-1, 0, 1} {
			occ := e.onDay(now.AddDate(0, 0, dayOffset))
			dist := now.Sub(occ)
			if dist < 0 {
				dist = -dist
			}

			switch {
			case !found, dist < bestDist:
				best, bestDist, found = occ, dist, true
			case dist == bestDist && !occ.After(now) && best.After(now):
				// empate exacto: preferimos la pasada
				best = occ
			}
		}
	}

	return best, nil
}

// NextDose devuelve la ocurrencia más próxima estrictamente posterior a
// now. Si todas las entradas de hoy ya pasaron, salta a la más temprana
// de mañana.
func (m Medication) NextDose(now time.Time) (time.Time, error) {
	if m.IsAsNeeded() {
		return time.Time{}, ErrNotScheduled
	}

	var best time.Time
	found := false

	for _, e := range m.Schedule {
		for _, dayOffset := range []int{0, 1} {
			occ := e.onDay(now.AddDate(0, 0, dayOffset))
			if !occ.After(now) {
				continue
			}
			if !found || occ.Before(best) {
				best, found = occ, true
			}
		}
	}

	return best, nil
}

// UpdateStartsToFuture es el hook de mantenimiento que se invoca en cada
// carga. Como solo guardamos hora del día (sin fecha base), no hay base
// que avanzar: el roll-forward es un no-op. Sí re-aseguramos aquí los
// invariantes de orden tras una carga desde almacenamiento.
func (m *Medication) UpdateStartsToFuture() {
	sort.SliceStable(m.DoseRecord, func(i, j int) bool {
		return m.DoseRecord[i].TakenAt.Before(m.DoseRecord[j].TakenAt)
	})
}
