package reminders

// Event es el conjunto cerrado de eventos que procesa el worker:
// restore (arranque), fire (despertador vencido), confirm (el usuario
// tomó la dosis) y defer (recuérdame luego). La entrega puede ser
// at-least-once; cada handler es idempotente.
type Event interface {
	eventKind() string
}

// Restore se encola al arrancar el proceso (el análogo del broadcast de
// boot): re-arma todos los despertadores y repesca dosis ya vencidas.
type Restore struct{}

// Fire llega cuando vence un despertador (de pauta o de aplazamiento).
type Fire struct {
	MedicationID string
}

// Confirm llega desde la acción "la tomé" de la notificación.
type Confirm struct {
	MedicationID string

	// ProofImagePath viene relleno cuando la confirmación entra por el
	// flujo de captura con foto; vacío en la confirmación directa.
	ProofImagePath string
}

// Defer llega desde la acción "recuérdame luego" de la notificación.
type Defer struct {
	MedicationID string
}

func (Restore) eventKind() string { return "restore" }
func (Fire) eventKind() string    { return "fire" }
func (Confirm) eventKind() string { return "confirm" }
func (Defer) eventKind() string   { return "defer" }
