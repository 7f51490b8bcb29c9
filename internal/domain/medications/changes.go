package medications

import "sync"

type ChangeType string

const (
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change es el evento que el core emite hacia observadores (UI, watch).
// Lleva un snapshot inmutable; el core no guarda estado de presentación.
type Change struct {
	Type       ChangeType
	Medication Medication
}

// ChangeHub reparte cambios a los suscriptores sin bloquear nunca la
// cola de mutaciones: si un observador va lento, su evento se descarta
// (el observador re-lee el estado completo al reconectar). Lo comparten
// el flujo de edición y el procesador de recordatorios.
type ChangeHub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{subs: make(map[int]chan Change)}
}

func (h *ChangeHub) Subscribe() (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Change, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *ChangeHub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		select {
		case sub <- c:
		default:
			// suscriptor lento: descartamos, no bloqueamos
		}
	}
}
