package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"med-reminder/internal/middleware"
	"med-reminder/internal/ports/proof"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, proofs proof.Store) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))

		mr.Get("/{medID}", getMedicationHandler(svc))
		mr.Patch("/{medID}", updateMedicationHandler(svc))
		mr.Delete("/{medID}", deleteMedicationHandler(svc))

		mr.Post("/{medID}/notify", setNotifyHandler(svc))

		// Historial de tomas ("me la acabo de tomar")
		mr.Post("/{medID}/doses", takeDoseHandler(svc))
		mr.Post("/{medID}/doses/proof", takeDoseWithProofHandler(svc, proofs))
		mr.Delete("/{medID}/doses/{index}", removeDoseRecordHandler(svc))
	})
}

type scheduleEntryDTO struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type doseRecordDTO struct {
	ID             string     `json:"id"`
	TakenAt        time.Time  `json:"taken_at"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
	ProofImagePath string     `json:"proof_image_path,omitempty"`
}

// createMedicationRequest es el cuerpo para dar de alta una medicación.
type createMedicationRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Schedule          []scheduleEntryDTO `json:"schedule"` // vacío => a demanda
	Notify            bool               `json:"notify"`
	RequirePhotoProof bool               `json:"require_photo_proof"`
}

type updateMedicationRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name              *string             `json:"name"`
	Description       *string             `json:"description"`
	Schedule          *[]scheduleEntryDTO `json:"schedule"`
	Notify            *bool               `json:"notify"`
	Active            *bool               `json:"active"`
	RequirePhotoProof *bool               `json:"require_photo_proof"`
}

type setNotifyRequest struct {
	Enabled bool `json:"enabled"`
}

// medicationResponse representa una medicación devuelta por la API, con
// los instantes derivados (siguiente y más cercana) ya calculados.
type medicationResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Schedule          []scheduleEntryDTO `json:"schedule"`
	Notify            bool               `json:"notify"`
	Active            bool               `json:"active"`
	RequirePhotoProof bool               `json:"require_photo_proof"`
	AsNeeded          bool               `json:"as_needed"`

	// Derivados, nunca persistidos: se calculan respecto de "ahora".
	NextDose         *time.Time `json:"next_dose,omitempty"`
	ClosestDose      *time.Time `json:"closest_dose,omitempty"`
	ClosestDoseTaken bool       `json:"closest_dose_taken"`

	DoseRecord []doseRecordDTO `json:"dose_record"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toResponse(m Medication, now time.Time) medicationResponse {
	resp := medicationResponse{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Schedule:          make([]scheduleEntryDTO, 0, len(m.Schedule)),
		Notify:            m.Notify,
		Active:            m.Active,
		RequirePhotoProof: m.RequirePhotoProof,
		AsNeeded:          m.IsAsNeeded(),
		ClosestDoseTaken:  m.ClosestDoseAlreadyTaken(now),
		DoseRecord:        make([]doseRecordDTO, 0, len(m.DoseRecord)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, e := range m.Schedule {
		resp.Schedule = append(resp.Schedule, scheduleEntryDTO{Hour: e.Hour, Minute: e.Minute})
	}
	for _, r := range m.DoseRecord {
		resp.DoseRecord = append(resp.DoseRecord, doseRecordDTO{
			ID:             r.ID,
			TakenAt:        r.TakenAt,
			ScheduledFor:   r.ScheduledFor,
			ProofImagePath: r.ProofImagePath,
		})
	}
	if !m.IsAsNeeded() {
		if next, err := m.NextDose(now); err == nil {
			resp.NextDose = &next
		}
		if closest, err := m.ClosestDose(now); err == nil {
			resp.ClosestDose = &closest
		}
	}
	return resp
}

func toEntries(in []scheduleEntryDTO) []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(in))
	for _, e := range in {
		out = append(out, ScheduleEntry{Hour: e.Hour, Minute: e.Minute})
	}
	return out
}

// createMedicationHandler godoc
// @Summary Crear medicación
// @Description Da de alta una medicación con su pauta diaria (schedule vacío => a demanda). Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body createMedicationRequest true "Datos de la medicación"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Name:              req.Name,
			Description:       req.Description,
			Schedule:          toEntries(req.Schedule),
			Notify:            req.Notify,
			RequirePhotoProof: req.RequirePhotoProof,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(m, time.Now()))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicaciones
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		meds, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		out := make([]medicationResponse, 0, len(meds))
		for _, m := range meds {
			out = append(out, toResponse(m, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Detalle de medicación
// @Tags medications
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m, time.Now()))
	}
}

// updateMedicationHandler godoc
// @Summary Actualizar medicación (PATCH)
// @Tags medications
// @Accept json
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param payload body updateMedicationRequest true "Campos a tocar; los ausentes no cambian"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medID} [patch]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		var req updateMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:              req.Name,
			Description:       req.Description,
			Notify:            req.Notify,
			Active:            req.Active,
			RequirePhotoProof: req.RequirePhotoProof,
		}
		if req.Schedule != nil {
			entries := toEntries(*req.Schedule)
			in.Schedule = &entries
		}

		m, err := svc.Update(r.Context(), chi.URLParam(r, "medID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m, time.Now()))
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicación
// @Description Borra la medicación y cancela su despertador y cualquier notificación pendiente.
// @Tags medications
// @Param medID path string true "ID de la medicación"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "medID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// setNotifyHandler godoc
// @Summary Activar/desactivar recordatorios
// @Description Al activar se arma el despertador al próximo NextDose; al desactivar se cancela.
// @Tags medications
// @Accept json
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param payload body setNotifyRequest true "enabled"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medID}/notify [post]
func setNotifyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		var req setNotifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.SetNotify(r.Context(), chi.URLParam(r, "medID"), req.Enabled)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m, time.Now()))
	}
}

// takeDoseHandler godoc
// @Summary Registrar "me la acabo de tomar"
// @Description Añade una toma al historial. Para medicaciones con pauta la toma queda vinculada a la ocurrencia más cercana; si esa ocurrencia ya está confirmada responde 409. Si la medicación exige foto de prueba responde 409 y hay que usar /doses/proof.
// @Tags doses
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Success 201 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Failure 409 {string} string "photo proof required / closest dose already taken"
// @Router /medications/{medID}/doses [post]
func takeDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		m, err := svc.TakeDose(r.Context(), chi.URLParam(r, "medID"), "")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(m, time.Now()))
	}
}

// takeDoseWithProofHandler godoc
// @Summary Registrar toma con foto de prueba
// @Description Sube la foto (multipart, campo "photo"), la guarda en el almacén de pruebas y registra la toma con la clave del objeto.
// @Tags doses
// @Accept mpfd
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param photo formData file true "Foto de prueba"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "missing photo"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Failure 503 {string} string "proof storage not configured"
// @Router /medications/{medID}/doses/proof [post]
func takeDoseWithProofHandler(svc *Service, proofs proof.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}
		if proofs == nil {
			http.Error(w, "proof storage not configured", http.StatusServiceUnavailable)
			return
		}

		medID := chi.URLParam(r, "medID")

		file, header, err := r.FormFile("photo")
		if err != nil {
			http.Error(w, "missing photo", http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		key, err := proofs.Save(r.Context(), medID, header.Filename, file, header.Size, contentType)
		if err != nil {
			http.Error(w, "proof upload failed", http.StatusBadGateway)
			return
		}

		m, err := svc.TakeDose(r.Context(), medID, key)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(m, time.Now()))
	}
}

// removeDoseRecordHandler godoc
// @Summary Borrar una toma del historial
// @Description Borra la toma por índice (orden ascendente por taken_at). Un índice ya inválido responde 404 y no cambia nada.
// @Tags doses
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param index path int true "Índice de la toma"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found / dose record not found"
// @Router /medications/{medID}/doses/{index} [delete]
func removeDoseRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}

		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "invalid index", http.StatusBadRequest)
			return
		}

		m, err := svc.RemoveDoseRecord(r.Context(), chi.URLParam(r, "medID"), index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m, time.Now()))
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	case errors.Is(err, ErrIndexOutOfRange):
		// la fila ya no existe: para la UI es una acción ignorable
		http.Error(w, "dose record not found", http.StatusNotFound)
	case errors.Is(err, ErrProofRequired):
		http.Error(w, "photo proof required", http.StatusConflict)
	case errors.Is(err, ErrDoseAlreadyTaken):
		http.Error(w, "closest dose already taken", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
