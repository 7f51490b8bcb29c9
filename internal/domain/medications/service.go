package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminder/internal/platform/workqueue"
	"med-reminder/internal/ports/alarms"
	"med-reminder/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrProofRequired: la medicación exige foto de prueba; la toma no
	// puede confirmarse sin adjuntarla.
	ErrProofRequired = errors.New("photo proof required")

	// ErrDoseAlreadyTaken: el hueco programado más cercano ya tiene toma.
	ErrDoseAlreadyTaken = errors.New("closest dose already taken")
)

// Service es el flujo de edición y consulta de medicaciones. Todas las
// mutaciones se serializan por la misma Queue que procesa los eventos de
// recordatorio, así que las escrituras sobre una medicación quedan
// linearizadas con los Fire/Confirm concurrentes.
type Service struct {
	repo     Repository
	alarms   alarms.Scheduler
	notifier notify.Notifier
	queue    *workqueue.Queue
	hub      *ChangeHub
	now      func() time.Time
}

func NewService(repo Repository, sched alarms.Scheduler, notifier notify.Notifier, queue *workqueue.Queue, hub *ChangeHub) *Service {
	if hub == nil {
		hub = NewChangeHub()
	}
	return &Service{
		repo:     repo,
		alarms:   sched,
		notifier: notifier,
		queue:    queue,
		hub:      hub,
		now:      time.Now,
	}
}

// Subscribe abre un canal de observación de cambios. No bloquea nunca
// la cola de mutaciones; un observador lento pierde eventos.
func (s *Service) Subscribe() (<-chan Change, func()) {
	return s.hub.Subscribe()
}

type CreateInput struct {
	Name              string
	Description       string
	Schedule          []ScheduleEntry
	Notify            bool
	RequirePhotoProof bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	for _, e := range in.Schedule {
		if !e.Valid() {
			return Medication{}, ErrInvalidInput
		}
	}

	var out Medication
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		now := s.now()
		m := Medication{
			ID:                uuid.NewString(),
			Name:              strings.TrimSpace(in.Name),
			Description:       strings.TrimSpace(in.Description),
			Schedule:          append([]ScheduleEntry(nil), in.Schedule...),
			Notify:            in.Notify,
			Active:            true,
			RequirePhotoProof: in.RequirePhotoProof,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		if err := s.repo.Create(ctx, m); err != nil {
			return err
		}
		if err := s.rearm(m, now); err != nil {
			return err
		}
		s.hub.Publish(Change{Type: ChangeUpdated, Medication: m.Clone()})
		out = m
		return nil
	})
	return out, err
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name              *string
	Description       *string
	Schedule          *[]ScheduleEntry
	Notify            *bool
	Active            *bool
	RequirePhotoProof *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Medication, error) {
	if strings.TrimSpace(id) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.Schedule != nil {
		for _, e := range *in.Schedule {
			if !e.Valid() {
				return Medication{}, ErrInvalidInput
			}
		}
	}

	var out Medication
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		// re-fetch: otro punto de entrada puede haber escrito entre medias
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return ErrInvalidInput
			}
			m.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			m.Description = strings.TrimSpace(*in.Description)
		}
		if in.Schedule != nil {
			m.Schedule = append([]ScheduleEntry(nil), (*in.Schedule)...)
		}
		if in.Notify != nil {
			m.Notify = *in.Notify
		}
		if in.Active != nil {
			m.Active = *in.Active
		}
		if in.RequirePhotoProof != nil {
			m.RequirePhotoProof = *in.RequirePhotoProof
		}

		now := s.now()
		m.UpdatedAt = now

		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		if err := s.rearm(m, now); err != nil {
			return err
		}
		if !m.Active {
			// una medicación inactiva no vuelve a notificar
			_ = s.notifier.Withdraw(m.ID)
		}
		s.hub.Publish(Change{Type: ChangeUpdated, Medication: m.Clone()})
		out = m
		return nil
	})
	return out, err
}

// SetNotify activa o desactiva los recordatorios: armado al NextDose al
// encender, cancelación del despertador al apagar.
func (s *Service) SetNotify(ctx context.Context, id string, on bool) (Medication, error) {
	return s.Update(ctx, id, UpdateInput{Notify: &on})
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	m.UpdateStartsToFuture()
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	meds, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range meds {
		meds[i].UpdateStartsToFuture()
	}
	return meds, nil
}

// Delete borra la medicación y cancela cualquier despertador y
// notificación pendientes.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.queue.Do(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		s.alarms.Cancel(id)
		_ = s.notifier.Withdraw(id)
		s.hub.Publish(Change{Type: ChangeDeleted, Medication: m.Clone()})
		return nil
	})
}

// TakeDose registra "me la acabo de tomar" desde el flujo de edición.
// proofPath llega vacío salvo que ya se haya subido la foto de prueba.
func (s *Service) TakeDose(ctx context.Context, id string, proofPath string) (Medication, error) {
	if strings.TrimSpace(id) == "" {
		return Medication{}, ErrInvalidInput
	}

	var out Medication
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if m.RequirePhotoProof && strings.TrimSpace(proofPath) == "" {
			return ErrProofRequired
		}

		now := s.now()
		if !m.IsAsNeeded() && m.ClosestDoseAlreadyTaken(now) {
			return ErrDoseAlreadyTaken
		}

		r := DoseRecord{
			ID:             uuid.NewString(),
			TakenAt:        now,
			ProofImagePath: strings.TrimSpace(proofPath),
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

		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		_ = s.notifier.Withdraw(m.ID)
		s.hub.Publish(Change{Type: ChangeUpdated, Medication: m.Clone()})
		out = m
		return nil
	})
	return out, err
}

// RemoveDoseRecord borra una toma por índice (acción explícita del
// usuario sobre el historial).
func (s *Service) RemoveDoseRecord(ctx context.Context, id string, index int) (Medication, error) {
	if strings.TrimSpace(id) == "" {
		return Medication{}, ErrInvalidInput
	}

	var out Medication
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		m.UpdateStartsToFuture()
		if err := m.RemoveDoseAt(index); err != nil {
			return err
		}
		m.UpdatedAt = s.now()

		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		s.hub.Publish(Change{Type: ChangeUpdated, Medication: m.Clone()})
		out = m
		return nil
	})
	return out, err
}

// rearm deja el despertador en el estado que mandan los invariantes:
// notify=true y activa y con pauta => exactamente un armado al NextDose;
// en cualquier otro caso, ninguno.
func (s *Service) rearm(m Medication, now time.Time) error {
	if m.Notify && m.Active && !m.IsAsNeeded() {
		next, err := m.NextDose(now)
		if err != nil {
			return err
		}
		return s.alarms.Arm(m.ID, next, alarms.Payload{
			MedicationID: m.ID,
			Kind:         alarms.KindSchedule,
		})
	}
	s.alarms.Cancel(m.ID)
	return nil
}
