package router

import (
	"net/http"
	"time"

	"med-reminder/internal/domain/medications"
	"med-reminder/internal/platform/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// La app es de un solo usuario detrás del auth middleware.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// changeMessage es deliberadamente fino: avisa de qué cambió y el
// cliente re-lee el detalle por GET. Así perder un mensaje (cliente
// lento) nunca deja estado corrupto en la UI.
type changeMessage struct {
	Type         string `json:"type"`
	MedicationID string `json:"medication_id"`
	Name         string `json:"name,omitempty"`
}

// watchHandler emite por websocket cada cambio de medicación (altas,
// ediciones, tomas confirmadas, borrados) para que la UI refresque sin
// sondear. Un cliente lento pierde mensajes en vez de frenar al resto.
func watchHandler(hub *medications.ChangeHub, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("websocket upgrade failed", map[string]any{"error": err.Error()})
			return
		}

		changes, cancel := hub.Subscribe()
		defer cancel()
		defer conn.Close()

		// Lector solo para pongs y detección de cierre.
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case ch, ok := <-changes:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				msg := changeMessage{
					Type:         string(ch.Type),
					MedicationID: ch.Medication.ID,
					Name:         ch.Medication.Name,
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
