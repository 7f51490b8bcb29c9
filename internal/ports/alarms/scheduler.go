package alarms

import "time"

// Payload viaja con el registro de despertador y permite re-identificar
// la medicación y el tipo de evento de origen cuando el trigger dispara.
type Payload struct {
	MedicationID string
	// Kind discrimina el origen del disparo: "schedule" (pauta regular)
	// o "defer" (recordatorio pospuesto). El despacho trata ambos como
	// un Fire; el campo existe para logging y diagnóstico.
	Kind string
}

const (
	KindSchedule = "schedule"
	KindDefer    = "defer"
)

// Scheduler registra despertadores one-shot identificados por id de
// medicación. La entrega es best-effort: la plataforma puede retrasar o
// agrupar disparos, así que el consumidor debe re-derivar la relevancia
// de la dosis al recibir el disparo, nunca confiar ciegamente en la hora.
type Scheduler interface {
	// Arm (re)registra un despertador en at. Sustituye cualquier registro
	// previo con el mismo id: nunca hay dos armados para una medicación.
	Arm(id string, at time.Time, p Payload) error

	// Cancel es idempotente: cancelar un id sin registro es un no-op.
	Cancel(id string)
}
