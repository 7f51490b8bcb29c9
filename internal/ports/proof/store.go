package proof

import (
	"context"
	"io"
)

// Store guarda las fotos de prueba de toma y devuelve la clave del
// objeto almacenado. La captura en sí (cámara/UI) queda fuera del core;
// aquí solo se persiste lo subido.
type Store interface {
	Save(ctx context.Context, medicationID, filename string, r io.Reader, size int64, contentType string) (string, error)
}
