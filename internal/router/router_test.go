package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-reminder/internal/router"
)

func TestHTTP_EndToEnd_MedicationLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, SkipRestore: true}))
	defer ts.Close()

	userID := "user-1"

	// 1) Sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}

	// 2) Alta con pauta de dos tomas diarias
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":        "Levothyroxine",
		"description": "50mcg en ayunas",
		"schedule": []map[string]any{
			{"hour": 8, "minute": 0},
			{"hour": 20, "minute": 0},
		},
		"notify": true,
	})

	// 3) Pauta inválida => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications", userID, map[string]any{
			"name":     "Broken",
			"schedule": []map[string]any{{"hour": 24, "minute": 0}},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid schedule, got %d", st)
		}
	}

	// 4) Detalle: programada, con próxima y más cercana calculadas
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get medication, got %d body=%s", st, string(body))
		}
		var resp struct {
			AsNeeded    bool    `json:"as_needed"`
			NextDose    *string `json:"next_dose"`
			ClosestDose *string `json:"closest_dose"`
			Active      bool    `json:"active"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AsNeeded {
			t.Fatalf("expected scheduled medication, got as_needed body=%s", string(body))
		}
		if resp.NextDose == nil || resp.ClosestDose == nil {
			t.Fatalf("expected derived dose instants, body=%s", string(body))
		}
		if !resp.Active {
			t.Fatalf("expected medication active by default, body=%s", string(body))
		}
	}

	// 5) PATCH de nombre; el resto no cambia
	{
		st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
			"name": "Levothyroxine 50",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var resp struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Name != "Levothyroxine 50" || resp.Description != "50mcg en ayunas" {
			t.Fatalf("patch changed wrong fields: body=%s", string(body))
		}
	}

	// 6) "Me la acabo de tomar": queda vinculada a la ocurrencia más cercana
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses", userID, nil)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 take dose, got %d body=%s", st, string(body))
		}
		var resp struct {
			ClosestDoseTaken bool `json:"closest_dose_taken"`
			DoseRecord       []struct {
				ScheduledFor *string `json:"scheduled_for"`
			} `json:"dose_record"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.DoseRecord) != 1 {
			t.Fatalf("expected 1 dose record, body=%s", string(body))
		}
		if resp.DoseRecord[0].ScheduledFor == nil {
			t.Fatalf("expected dose linked to scheduled occurrence, body=%s", string(body))
		}
		if !resp.ClosestDoseTaken {
			t.Fatalf("expected closest dose marked taken, body=%s", string(body))
		}
	}

	// 7) Repetir la toma de la misma ocurrencia => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses", userID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate dose, got %d", st)
		}
	}

	// 8) Confirmar desde la notificación: idempotente sobre la misma ocurrencia
	{
		st, body := doReq(t, ts.URL, "POST", "/reminders/"+medID+"/confirm", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 confirm, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get after confirm, got %d", st)
		}
		var resp struct {
			DoseRecord []any `json:"dose_record"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.DoseRecord) != 1 {
			t.Fatalf("confirm duplicated the dose record, body=%s", string(body))
		}
	}

	// 9) Posponer desde la notificación
	{
		st, body := doReq(t, ts.URL, "POST", "/reminders/"+medID+"/defer", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 defer, got %d body=%s", st, string(body))
		}
	}

	// 10) Borrar la toma del historial; repetir el borrado => 404
	{
		st, body := doReq(t, ts.URL, "DELETE", "/medications/"+medID+"/doses/0", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete dose record, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/medications/"+medID+"/doses/0", userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 deleting missing dose record, got %d", st)
		}
	}

	// 11) Apagar recordatorios
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/notify", userID, map[string]any{
			"enabled": false,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 notify off, got %d body=%s", st, string(body))
		}
	}

	// 12) Borrar medicación; el detalle desaparece
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/"+medID, userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete medication, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_AsNeededMedication_AllowsRepeatedDoses(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, SkipRestore: true}))
	defer ts.Close()

	userID := "user-1"

	// Sin pauta => a demanda
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name": "Ibuprofen",
	})

	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses", userID, nil)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 take dose #%d, got %d body=%s", i+1, st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get, got %d", st)
	}
	var resp struct {
		AsNeeded   bool `json:"as_needed"`
		DoseRecord []struct {
			ScheduledFor *string `json:"scheduled_for"`
		} `json:"dose_record"`
	}
	_ = json.Unmarshal(body, &resp)
	if !resp.AsNeeded {
		t.Fatalf("expected as_needed, body=%s", string(body))
	}
	if len(resp.DoseRecord) != 2 {
		t.Fatalf("expected 2 dose records, body=%s", string(body))
	}
	for _, r := range resp.DoseRecord {
		if r.ScheduledFor != nil {
			t.Fatalf("as-needed dose must not link an occurrence, body=%s", string(body))
		}
	}
}

func TestHTTP_PhotoProof_RequiredBeforeDose(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, SkipRestore: true}))
	defer ts.Close()

	userID := "user-1"

	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":                "Methotrexate",
		"schedule":            []map[string]any{{"hour": 9, "minute": 30}},
		"require_photo_proof": true,
	})

	// Sin foto => 409
	st, _ := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses", userID, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 proof required, got %d", st)
	}

	// También desde el callback de la notificación
	st, _ = doReq(t, ts.URL, "POST", "/reminders/"+medID+"/confirm", userID, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 proof required on confirm, got %d", st)
	}

	// Sin almacén de pruebas configurado, la subida responde 503
	st, _ = doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses/proof", userID, nil)
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without proof storage, got %d", st)
	}

	// Con la clave de la foto ya subida, el confirm registra la toma
	st, body := doReq(t, ts.URL, "POST", "/reminders/"+medID+"/confirm", userID, map[string]any{
		"proof_image_path": "proofs/" + medID + "/photo.jpg",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 confirm with proof, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get, got %d", st)
	}
	var resp struct {
		DoseRecord []struct {
			ProofImagePath string `json:"proof_image_path"`
		} `json:"dose_record"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.DoseRecord) != 1 || resp.DoseRecord[0].ProofImagePath == "" {
		t.Fatalf("expected 1 dose record with proof, body=%s", string(body))
	}
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, userID string, payload map[string]any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}
