package workqueue

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("workqueue: closed")

// Queue ejecuta tareas en un único worker, en orden de llegada. Todas
// las escrituras sobre medicaciones (eventos de plataforma y ediciones
// de usuario) pasan por la misma Queue para linearizar los cambios y
// evitar lost updates entre, p.ej., un Fire y un Confirm concurrentes.
type Queue struct {
	tasks chan func()

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

func New(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	q := &Queue{
		tasks:  make(chan func(), buffer),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.closed:
			// drena lo ya encolado antes de salir
			for {
				select {
				case fn := <-q.tasks:
					fn()
				default:
					return
				}
			}
		case fn := <-q.tasks:
			fn()
		}
	}
}

// Enqueue encola sin esperar el resultado (disparos de timer, restore).
func (q *Queue) Enqueue(fn func()) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}
	select {
	case q.tasks <- fn:
		return nil
	case <-q.closed:
		return ErrClosed
	}
}

// Do ejecuta fn en el worker y espera su resultado. El contexto solo
// corta la espera del caller; la tarea encolada se ejecuta igualmente
// para no dejar el estado a medias.
func (q *Queue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	res := make(chan error, 1)
	if err := q.Enqueue(func() {
		res <- fn(context.WithoutCancel(ctx))
	}); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close deja de aceptar tareas y espera a que el worker termine las
// pendientes.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
	<-q.done
}
