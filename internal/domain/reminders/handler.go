package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"med-reminder/internal/domain/medications"
	"med-reminder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta los callbacks de las acciones de notificación.
// "confirm" y "defer" son las dos acciones que lleva cada aviso de dosis.
func RegisterRoutes(r chi.Router, d *Dispatcher) {
	r.Route("/reminders/{medID}", func(rr chi.Router) {
		rr.Post("/confirm", confirmHandler(d))
		rr.Post("/defer", deferHandler(d))
	})
}

type confirmRequest struct {
	ProofImagePath string `json:"proof_image_path"`
}

type eventResponse struct {
	MedicationID string    `json:"medication_id"`
	Status       string    `json:"status"`
	At           time.Time `json:"at"`
}

// confirmHandler godoc
// @Summary Confirmar dosis desde la notificación
// @Description Acción "Took it": registra la toma pendiente, muestra el aviso "Taken" y lo retira al poco. Si la medicación ya no existe la notificación se retira sin error.
// @Tags reminders
// @Accept json
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param payload body confirmRequest false "Clave de la foto de prueba, si aplica"
// @Success 200 {object} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "photo proof required"
// @Router /reminders/{medID}/confirm [post]
func confirmHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		var req confirmRequest
		if r.Body != nil {
			// cuerpo opcional: sin JSON válido se confirma sin prueba
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		ev := Confirm{
			MedicationID:   chi.URLParam(r, "medID"),
			ProofImagePath: req.ProofImagePath,
		}
		if err := d.Dispatch(r.Context(), ev); err != nil {
			if errors.Is(err, medications.ErrProofRequired) {
				http.Error(w, "photo proof required", http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, eventResponse{
			MedicationID: ev.MedicationID,
			Status:       "confirmed",
			At:           time.Now(),
		})
	}
}

// deferHandler godoc
// @Summary Posponer dosis desde la notificación
// @Description Acción "Remind me in 15": retira el aviso actual y arma un recordatorio único dentro de 15 minutos.
// @Tags reminders
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Success 200 {object} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Router /reminders/{medID}/defer [post]
func deferHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		ev := Defer{MedicationID: chi.URLParam(r, "medID")}
		if err := d.Dispatch(r.Context(), ev); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, eventResponse{
			MedicationID: ev.MedicationID,
			Status:       "deferred",
			At:           time.Now(),
		})
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
