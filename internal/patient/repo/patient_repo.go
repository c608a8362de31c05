package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/calyxhealth/hospital-records/internal/patient/entity"
)

// Field is one column assignment of a partial update.
type Field struct {
	Column string
	Value  any
}

// PatientRepo provides data access for the patient_details table using sqlx.
type PatientRepo struct {
	db *sqlx.DB
}

func NewPatientRepo(db *sqlx.DB) *PatientRepo { return &PatientRepo{db: db} }

const detailColumns = `user_id, full_name, age, gender, height_cm, weight_kg, phone, address, created_at, updated_at`

// ListSummaries returns every PATIENT user joined with their details,
// ordered by full name with nulls last.
func (r *PatientRepo) ListSummaries(ctx context.Context) ([]entity.Summary, error) {
	const q = `SELECT u.id AS user_id, pd.full_name, pd.age, pd.gender, pd.phone, pd.created_at
		FROM users u JOIN patient_details pd ON pd.user_id = u.id
		WHERE u.role = 'PATIENT'
		ORDER BY pd.full_name NULLS LAST`
	rows := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRecord returns one user joined with their details (LEFT JOIN, so the
// detail columns may be NULL) or sql.ErrNoRows.
func (r *PatientRepo) GetRecord(ctx context.Context, userID string) (*entity.Record, error) {
	const q = `SELECT u.id AS user_id, u.email, pd.full_name, pd.age, pd.gender,
			pd.height_cm, pd.weight_kg, pd.phone, pd.address, pd.created_at, pd.updated_at
		FROM users u LEFT JOIN patient_details pd ON pd.user_id = u.id
		WHERE u.id = $1`
	var row entity.Record
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Insert creates a patient_details row and returns it. Constraint
// violations (missing user, duplicate details) surface as *pq.Error.
func (r *PatientRepo) Insert(ctx context.Context, d *entity.PatientDetails) (*entity.PatientDetails, error) {
	const q = `INSERT INTO patient_details (user_id, full_name, age, gender, height_cm, weight_kg, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + detailColumns
	var row entity.PatientDetails
	if err := r.db.GetContext(ctx, &row, q,
		d.UserID, d.FullName, d.Age, d.Gender, d.HeightCm, d.WeightKg, d.Phone, d.Address); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update applies the given column assignments to one row, always bumping
// updated_at. Returns the updated row or sql.ErrNoRows.
func (r *PatientRepo) Update(ctx context.Context, userID string, sets []Field) (*entity.PatientDetails, error) {
	frags := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for i, f := range sets {
		frags = append(frags, fmt.Sprintf("%s = $%d", f.Column, i+1))
		args = append(args, f.Value)
	}
	args = append(args, userID)

	q := fmt.Sprintf(`UPDATE patient_details SET %s, updated_at = NOW() WHERE user_id = $%d RETURNING %s`,
		strings.Join(frags, ", "), len(sets)+1, detailColumns)

	var row entity.PatientDetails
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, err
	}
	return &row, nil
}
