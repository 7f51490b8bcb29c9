// Package timers implementa el puerto de despertadores con time.Timer
// en proceso: el análogo del alarm manager de plataforma para un
// despliegue de servicio único.
package timers

import (
	"sync"
	"time"

	"med-reminder/internal/platform/logger"
	"med-reminder/internal/ports/alarms"
)

type Scheduler struct {
	mu     sync.Mutex
	armed  map[string]*time.Timer
	fire   func(alarms.Payload)
	log    logger.Logger
	closed bool
}

// New crea el scheduler. fire se invoca en una goroutine propia del
// timer cuando vence un registro; el receptor decide qué hacer (encolar
// un Fire) y no debe bloquear.
func New(fire func(alarms.Payload), log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.New(logger.Options{})
	}
	return &Scheduler{
		armed: make(map[string]*time.Timer),
		fire:  fire,
		log:   log,
	}
}

// SetHandler fija el receptor de disparos tras la construcción, para
// poder cablear scheduler y consumidor sin dependencia circular.
func (s *Scheduler) SetHandler(fire func(alarms.Payload)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire = fire
}

// Arm (re)registra el one-shot del id: el armado nuevo sustituye al
// anterior, nunca se acumulan.
func (s *Scheduler) Arm(id string, at time.Time, p alarms.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if t, ok := s.armed[id]; ok {
		t.Stop()
	}

	d := time.Until(at)
	if d < 0 {
		// vencida: dispara ya; el consumidor re-deriva la relevancia
		d = 0
	}

	s.armed[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.armed, id)
		fire := s.fire
		s.mu.Unlock()
		if fire != nil {
			fire(p)
		}
	})

	s.log.Debug("alarm armed", map[string]any{
		"medication_id": id,
		"at":            at.Format(time.RFC3339),
	})
	return nil
}

// Cancel es idempotente: cancelar un id sin registro es un no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.armed[id]; ok {
		t.Stop()
		delete(s.armed, id)
	}
}

// Close detiene todos los timers pendientes.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.armed {
		t.Stop()
		delete(s.armed, id)
	}
}
