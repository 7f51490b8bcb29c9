package reminders

import (
	"time"

	"med-reminder/internal/domain/medications"
	"med-reminder/internal/ports/notify"
)

// doseNotification es el aviso "toca tu dosis", con las dos acciones.
func doseNotification(m medications.Medication, subtitle string) notify.Notification {
	return notify.Notification{
		Title:    m.Name,
		Subtitle: subtitle,
		Body:     "Time for your dose",
		Actions: []notify.Action{
			{Key: notify.ActionConfirm, Label: "Took it"},
			{Key: notify.ActionRemind, Label: "Remind me in 15"},
		},
	}
}

// takenNotification es el estado terminal tras confirmar: mismo id,
// texto "Taken" y sin acciones; se retira sola poco después.
func takenNotification(m medications.Medication, subtitle string) notify.Notification {
	return notify.Notification{
		Title:    m.Name,
		Subtitle: subtitle,
		Body:     "Taken",
	}
}

// formatDoseTime formatea la hora de la dosis según la convención
// horaria configurada (12h o 24h).
func formatDoseTime(t time.Time, clock24 bool) string {
	if clock24 {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}
