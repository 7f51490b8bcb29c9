package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"med-reminder/internal/domain/medications"

	lru "github.com/hashicorp/golang-lru/v2"
)

const medsCacheSize = 256

type MedicationsRepo struct {
	db *sql.DB

	// cache de lectura para la ruta de observación/UI; se invalida en
	// cada escritura del mismo id
	cache *lru.Cache[string, medications.Medication]
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	cache, _ := lru.New[string, medications.Medication](medsCacheSize)
	return &MedicationsRepo{db: db, cache: cache}
}

// pauta y tomas se guardan como JSONB; el layout de fila es detalle del
// adapter, no contrato del dominio
type scheduleEntryRow struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type doseRecordRow struct {
	ID             string     `json:"id"`
	TakenAt        time.Time  `json:"taken_at"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
	ProofImagePath string     `json:"proof_image_path,omitempty"`
}

func encodeSchedule(entries []medications.ScheduleEntry) ([]byte, error) {
	rows := make([]scheduleEntryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, scheduleEntryRow{Hour: e.Hour, Minute: e.Minute})
	}
	return json.Marshal(rows)
}

func encodeDoseRecord(records []medications.DoseRecord) ([]byte, error) {
	rows := make([]doseRecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, doseRecordRow{
			ID:             r.ID,
			TakenAt:        r.TakenAt,
			ScheduledFor:   r.ScheduledFor,
			ProofImagePath: r.ProofImagePath,
		})
	}
	return json.Marshal(rows)
}

func decodeSchedule(raw []byte) ([]medications.ScheduleEntry, error) {
	var rows []scheduleEntryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	out := make([]medications.ScheduleEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, medications.ScheduleEntry{Hour: r.Hour, Minute: r.Minute})
	}
	return out, nil
}

func decodeDoseRecord(raw []byte) ([]medications.DoseRecord, error) {
	var rows []doseRecordRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode dose record: %w", err)
	}
	out := make([]medications.DoseRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, medications.DoseRecord{
			ID:             r.ID,
			TakenAt:        r.TakenAt,
			ScheduledFor:   r.ScheduledFor,
			ProofImagePath: r.ProofImagePath,
		})
	}
	return out, nil
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	schedule, err := encodeSchedule(m.Schedule)
	if err != nil {
		return err
	}
	doses, err := encodeDoseRecord(m.DoseRecord)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, name, description,
			schedule, notify, active, require_photo_proof,
			dose_record,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		m.ID,
		m.Name,
		m.Description,
		schedule,
		m.Notify,
		m.Active,
		m.RequirePhotoProof,
		doses,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.cache.Add(m.ID, m.Clone())
	return nil
}

func (r *MedicationsRepo) Update(ctx context.Context, meds ...medications.Medication) error {
	for _, m := range meds {
		schedule, err := encodeSchedule(m.Schedule)
		if err != nil {
			return err
		}
		doses, err := encodeDoseRecord(m.DoseRecord)
		if err != nil {
			return err
		}

		res, err := r.db.ExecContext(ctx, `
			UPDATE medications
			SET
				name = $2,
				description = $3,
				schedule = $4,
				notify = $5,
				active = $6,
				require_photo_proof = $7,
				dose_record = $8,
				updated_at = $9
			WHERE id = $1
		`,
			m.ID,
			m.Name,
			m.Description,
			schedule,
			m.Notify,
			m.Active,
			m.RequirePhotoProof,
			doses,
			m.UpdatedAt,
		)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			r.cache.Remove(m.ID)
			return medications.ErrNotFound
		}
		r.cache.Add(m.ID, m.Clone())
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}
	if m, ok := r.cache.Get(id); ok {
		return m.Clone(), nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, description,
			schedule, notify, active, require_photo_proof,
			dose_record,
			created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		return medications.Medication{}, err
	}
	r.cache.Add(m.ID, m.Clone())
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, description,
			schedule, notify, active, require_photo_proof,
			dose_record,
			created_at, updated_at
		FROM medications
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	r.cache.Remove(id)
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.cache.Contains(id) {
		return true, nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM medications WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var schedule, doses []byte

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&schedule,
		&m.Notify,
		&m.Active,
		&m.RequirePhotoProof,
		&doses,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}

	var err error
	if m.Schedule, err = decodeSchedule(schedule); err != nil {
		return medications.Medication{}, err
	}
	if m.DoseRecord, err = decodeDoseRecord(doses); err != nil {
		return medications.Medication{}, err
	}
	return m, nil
}
