package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"med-reminder/internal/domain/medications"
	"med-reminder/internal/platform/logger"
	"med-reminder/internal/platform/workqueue"
	"med-reminder/internal/ports/alarms"
	"med-reminder/internal/ports/notify"

	"github.com/google/uuid"
)

const (
	// RemindDelay es el aplazamiento fijo de "recuérdame luego",
	// independiente de la pauta de la medicación.
	RemindDelay = 15 * time.Minute

	// TakenDisplayDelay es lo que la notificación terminal "Taken"
	// permanece visible antes de retirarse sola.
	TakenDisplayDelay = 2 * time.Second
)

// Dispatcher procesa los cuatro eventos de recordatorio sobre el worker
// único compartido con el flujo de edición. Ningún error de estado mata
// al worker: el que referencia una medicación inexistente se recupera
// como "already deleted" (retira la notificación y no re-arma nada).
type Dispatcher struct {
	repo     medications.Repository
	alarms   alarms.Scheduler
	notifier notify.Notifier
	queue    *workqueue.Queue
	hub      *medications.ChangeHub
	log      logger.Logger

	clock24 bool
	now     func() time.Time

	// retiradas diferidas de la notificación "Taken", cancelables por id
	mu        sync.Mutex
	withdraws map[string]*time.Timer
}

type Options struct {
	Repo     medications.Repository
	Alarms   alarms.Scheduler
	Notifier notify.Notifier
	Queue    *workqueue.Queue
	Hub      *medications.ChangeHub
	Log      logger.Logger

	// Clock24 fuerza el formato de hora del subtítulo (convención local).
	Clock24 bool
}

func New(opts Options) *Dispatcher {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{})
	}
	return &Dispatcher{
		repo:      opts.Repo,
		alarms:    opts.Alarms,
		notifier:  opts.Notifier,
		queue:     opts.Queue,
		hub:       opts.Hub,
		log:       log,
		clock24:   opts.Clock24,
		now:       time.Now,
		withdraws: make(map[string]*time.Timer),
	}
}

// Dispatch procesa un evento en el worker y espera el resultado (puntos
// de entrada HTTP).
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	return d.queue.Do(ctx, func(ctx context.Context) error {
		return d.handle(ctx, ev)
	})
}

// Enqueue procesa un evento sin esperar (disparos de timer, restore en
// arranque). El error, si lo hay, solo se registra.
func (d *Dispatcher) Enqueue(ev Event) {
	err := d.queue.Enqueue(func() {
		if err := d.handle(context.Background(), ev); err != nil {
			d.log.Error("reminder event failed", map[string]any{
				"event": ev.eventKind(),
				"err":   err.Error(),
			})
		}
	})
	if err != nil {
		d.log.Error("reminder event dropped", map[string]any{
			"event": ev.eventKind(),
			"err":   err.Error(),
		})
	}
}

// HandleAlarm es el callback que se inyecta al scheduler de
// despertadores: cada disparo entra como un Fire.
func (d *Dispatcher) HandleAlarm(p alarms.Payload) {
	d.log.Debug("alarm fired", map[string]any{
		"medication_id": p.MedicationID,
		"kind":          p.Kind,
	})
	d.Enqueue(Fire{MedicationID: p.MedicationID})
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case Restore:
		return d.handleRestore(ctx)
	case Fire:
		return d.handleFire(ctx, e)
	case Confirm:
		return d.handleConfirm(ctx, e)
	case Defer:
		return d.handleDefer(ctx, e)
	default:
		return fmt.Errorf("unknown event kind %q", ev.eventKind())
	}
}

// handleRestore re-arma todos los despertadores tras un arranque y
// repesca las dosis ya vencidas que siguen sin confirmar.
func (d *Dispatcher) handleRestore(ctx context.Context) error {
	meds, err := d.repo.List(ctx)
	if err != nil {
		return err
	}

	now := d.now()
	touched := make([]medications.Medication, 0, len(meds))

	for _, m := range meds {
		m.UpdateStartsToFuture()

		if m.Notify && m.Active && !m.IsAsNeeded() {
			next, err := m.NextDose(now)
			if err != nil {
				return err
			}
			if err := d.alarms.Arm(m.ID, next, alarms.Payload{MedicationID: m.ID, Kind: alarms.KindSchedule}); err != nil {
				return err
			}

			closest, err := m.ClosestDose(now)
			if err != nil {
				return err
			}
			if now.After(closest) && !m.ClosestDoseAlreadyTaken(now) {
				d.post(m, doseNotification(m, formatDoseTime(closest, d.clock24)))
			}
		}

		touched = append(touched, m)
	}

	if len(touched) > 0 {
		if err := d.repo.Update(ctx, touched...); err != nil {
			return err
		}
	}
	d.log.Info("restore complete", map[string]any{"medications": len(meds)})
	return nil
}

// handleFire procesa un despertador vencido. Siempre deja la cadena de
// alarmas re-armada antes de decidir si notifica: un disparo retrasado o
// agrupado por la plataforma no puede romperla.
func (d *Dispatcher) handleFire(ctx context.Context, e Fire) error {
	m, err := d.repo.GetByID(ctx, e.MedicationID)
	if errors.Is(err, medications.ErrNotFound) {
		// ya borrada: retirar y no re-armar
		_ = d.notifier.Withdraw(e.MedicationID)
		return nil
	}
	if err != nil {
		return err
	}

	m.UpdateStartsToFuture()
	now := d.now()

	if m.Notify && m.Active && !m.IsAsNeeded() {
		next, err := m.NextDose(now)
		if err != nil {
			return err
		}
		if err := d.alarms.Arm(m.ID, next, alarms.Payload{MedicationID: m.ID, Kind: alarms.KindSchedule}); err != nil {
			return err
		}
	} else {
		// inactiva o sin pauta: cero despertadores armados
		d.alarms.Cancel(m.ID)
	}

	if err := d.repo.Update(ctx, m); err != nil {
		return err
	}

	if m.Active && !m.IsAsNeeded() && !m.ClosestDoseAlreadyTaken(now) {
		closest, err := m.ClosestDose(now)
		if err != nil {
			return err
		}
		d.post(m, doseNotification(m, formatDoseTime(closest, d.clock24)))
	}
	return nil
}

// handleConfirm registra la toma desde la acción de la notificación.
// Reprocesarlo (entrega at-least-once) no duplica tomas: el hueco ya
// confirmado se detecta y solo se refresca la notificación terminal.
func (d *Dispatcher) handleConfirm(ctx context.Context, e Confirm) error {
	m, err := d.repo.GetByID(ctx, e.MedicationID)
	if errors.Is(err, medications.ErrNotFound) {
		// already handled / borrada: solo retirar
		d.withdrawNow(e.MedicationID)
		return nil
	}
	if err != nil {
		return err
	}
	if !m.Active {
		d.withdrawNow(m.ID)
		return nil
	}

	if m.RequirePhotoProof && e.ProofImagePath == "" {
		// la confirmación directa no basta: hay que pasar por el flujo
		// de captura (fuera del core); la notificación queda en pie
		return medications.ErrProofRequired
	}

	now := d.now()
	if !m.ClosestDoseAlreadyTaken(now) && m.HasDoseRemaining(now) {
		r := medications.DoseRecord{
			ID:             uuid.NewString(),
			TakenAt:        now,
			ProofImagePath: e.ProofImagePath,
		}
		if !m.IsAsNeeded() {
			closest, err := m.ClosestDose(now)
			if err != nil {
				return err
			}
			r.ScheduledFor = &closest
		}
		m.AddTakenDose(r)
		m.UpdatedAt = now

		if err := d.repo.Update(ctx, m); err != nil {
			return err
		}
		if d.hub != nil {
			d.hub.Publish(medications.Change{Type: medications.ChangeUpdated, Medication: m.Clone()})
		}
	}

	subtitle := ""
	if !m.IsAsNeeded() {
		if closest, err := m.ClosestDose(now); err == nil {
			subtitle = formatDoseTime(closest, d.clock24)
		}
	}
	d.post(m, takenNotification(m, subtitle))
	d.scheduleWithdraw(m.ID)
	return nil
}

// handleDefer retira la notificación vigente y arma un one-shot a
// now+RemindDelay, al margen de la pauta regular.
func (d *Dispatcher) handleDefer(ctx context.Context, e Defer) error {
	// primero retirar, para que la carrera con un "a punto de notificar"
	// no deje dos notificaciones visibles
	d.withdrawNow(e.MedicationID)

	ok, err := d.repo.Exists(ctx, e.MedicationID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return d.alarms.Arm(e.MedicationID, d.now().Add(RemindDelay), alarms.Payload{
		MedicationID: e.MedicationID,
		Kind:         alarms.KindDefer,
	})
}

// post publica (o refresca) la notificación y anula cualquier retirada
// diferida pendiente para ese id.
func (d *Dispatcher) post(m medications.Medication, n notify.Notification) {
	d.cancelWithdraw(m.ID)
	if err := d.notifier.Post(m.ID, n); err != nil {
		d.log.Warn("notification post failed", map[string]any{
			"medication_id": m.ID,
			"err":           err.Error(),
		})
	}
}

// scheduleWithdraw programa la retirada de la notificación terminal como
// continuación cancelable: nunca retiene el worker durante la espera.
func (d *Dispatcher) scheduleWithdraw(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.withdraws[id]; ok {
		t.Stop()
	}
	d.withdraws[id] = time.AfterFunc(TakenDisplayDelay, func() {
		d.mu.Lock()
		delete(d.withdraws, id)
		d.mu.Unlock()
		_ = d.notifier.Withdraw(id)
	})
}

func (d *Dispatcher) cancelWithdraw(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.withdraws[id]; ok {
		t.Stop()
		delete(d.withdraws, id)
	}
}

func (d *Dispatcher) withdrawNow(id string) {
	d.cancelWithdraw(id)
	_ = d.notifier.Withdraw(id)
}
