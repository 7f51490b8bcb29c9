package medications

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: la medicación referida ya no existe en el store. Los
	// puntos de entrada de eventos lo recuperan como "already deleted".
	ErrNotFound = errors.New("medication not found")
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	// Update persiste una o más medicaciones ya existentes.
	Update(ctx context.Context, meds ...Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	List(ctx context.Context) ([]Medication, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
