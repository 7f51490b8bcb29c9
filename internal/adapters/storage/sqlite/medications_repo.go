package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"med-reminder/internal/domain/medications"

	"github.com/jmoiron/sqlx"
)

type MedicationsRepo struct {
	db *sqlx.DB
}

func NewMedicationsRepo(db *sqlx.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

// medicationRow es la fila plana; pauta y tomas van como JSON en
// columnas de texto.
type medicationRow struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	Schedule          string    `db:"schedule"`
	Notify            bool      `db:"notify"`
	Active            bool      `db:"active"`
	RequirePhotoProof bool      `db:"require_photo_proof"`
	DoseRecord        string    `db:"dose_record"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type scheduleEntryJSON struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type doseRecordJSON struct {
	ID             string     `json:"id"`
	TakenAt        time.Time  `json:"taken_at"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
	ProofImagePath string     `json:"proof_image_path,omitempty"`
}

func toRow(m medications.Medication) (medicationRow, error) {
	entries := make([]scheduleEntryJSON, 0, len(m.Schedule))
	for _, e := range m.Schedule {
		entries = append(entries, scheduleEntryJSON{Hour: e.Hour, Minute: e.Minute})
	}
	schedule, err := json.Marshal(entries)
	if err != nil {
		return medicationRow{}, err
	}

	records := make([]doseRecordJSON, 0, len(m.DoseRecord))
	for _, r := range m.DoseRecord {
		records = append(records, doseRecordJSON{
			ID:             r.ID,
			TakenAt:        r.TakenAt,
			ScheduledFor:   r.ScheduledFor,
			ProofImagePath: r.ProofImagePath,
		})
	}
	doses, err := json.Marshal(records)
	if err != nil {
		return medicationRow{}, err
	}

	return medicationRow{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Schedule:          string(schedule),
		Notify:            m.Notify,
		Active:            m.Active,
		RequirePhotoProof: m.RequirePhotoProof,
		DoseRecord:        string(doses),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func fromRow(row medicationRow) (medications.Medication, error) {
	var entries []scheduleEntryJSON
	if err := json.Unmarshal([]byte(row.Schedule), &entries); err != nil {
		return medications.Medication{}, fmt.Errorf("decode schedule: %w", err)
	}
	var records []doseRecordJSON
	if err := json.Unmarshal([]byte(row.DoseRecord), &records); err != nil {
		return medications.Medication{}, fmt.Errorf("decode dose record: %w", err)
	}

	m := medications.Medication{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		Notify:            row.Notify,
		Active:            row.Active,
		RequirePhotoProof: row.RequirePhotoProof,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	for _, e := range entries {
		m.Schedule = append(m.Schedule, medications.ScheduleEntry{Hour: e.Hour, Minute: e.Minute})
	}
	for _, r := range records {
		m.DoseRecord = append(m.DoseRecord, medications.DoseRecord{
			ID:             r.ID,
			TakenAt:        r.TakenAt,
			ScheduledFor:   r.ScheduledFor,
			ProofImagePath: r.ProofImagePath,
		})
	}
	return m, nil
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	row, err := toRow(m)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO medications (id, name, description, schedule, notify, active, require_photo_proof, dose_record, created_at, updated_at)
		VALUES (:id, :name, :description, :schedule, :notify, :active, :require_photo_proof, :dose_record, :created_at, :updated_at)
	`, row)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, meds ...medications.Medication) error {
	for _, m := range meds {
		row, err := toRow(m)
		if err != nil {
			return err
		}
		res, err := r.db.NamedExecContext(ctx, `
			UPDATE medications
			SET name = :name,
				description = :description,
				schedule = :schedule,
				notify = :notify,
				active = :active,
				require_photo_proof = :require_photo_proof,
				dose_record = :dose_record,
				updated_at = :updated_at
			WHERE id = :id
		`, row)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return medications.ErrNotFound
		}
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	var row medicationRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM medications WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return medications.Medication{}, medications.ErrNotFound
	}
	if err != nil {
		return medications.Medication{}, err
	}
	return fromRow(row)
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	var rows []medicationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM medications ORDER BY created_at ASC`); err != nil {
		return nil, err
	}

	out := make([]medications.Medication, 0, len(rows))
	for _, row := range rows {
		m, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM medications WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
