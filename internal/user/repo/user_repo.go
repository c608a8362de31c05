package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	patient "github.com/calyxhealth/hospital-records/internal/patient/entity"
	"github.com/calyxhealth/hospital-records/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, role, created_at, updated_at`

// EmailExists reports whether a user row with the given email exists.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, email); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByEmail returns a user matched by email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID returns a user matched by id or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateWithDetails inserts the user row and its patient_details row in one
// transaction. Either both rows exist afterwards or neither does.
func (r *UserRepo) CreateWithDetails(ctx context.Context, u *entity.User, d *patient.PatientDetails) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertUser = `INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertUser, u.ID, u.Email, u.PasswordHash, u.Role); err != nil {
		return err
	}

	const insertDetails = `INSERT INTO patient_details (user_id, full_name, age, gender, height_cm, weight_kg, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insertDetails,
		u.ID, d.FullName, d.Age, d.Gender, d.HeightCm, d.WeightKg, d.Phone, d.Address); err != nil {
		return err
	}

	return tx.Commit()
}
