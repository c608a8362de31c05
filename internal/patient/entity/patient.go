package entity

import "time"

// PatientDetails is the 1:1 extension row of a PATIENT user. Optional
// measurements are pointers so absent values round-trip as SQL NULLs.
type PatientDetails struct {
	UserID    string    `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Age       *int      `db:"age" json:"age"`
	Gender    *string   `db:"gender" json:"gender"`
	HeightCm  *float64  `db:"height_cm" json:"height_cm"`
	WeightKg  *float64  `db:"weight_kg" json:"weight_kg"`
	Phone     *string   `db:"phone" json:"phone"`
	Address   *string   `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is one row of the provider-facing patient list.
type Summary struct {
	UserID    string    `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Age       *int      `db:"age" json:"age"`
	Gender    *string   `db:"gender" json:"gender"`
	Phone     *string   `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Record is a single patient joined with their user row. Detail columns come
// from a LEFT JOIN, so every one of them may be NULL.
type Record struct {
	UserID    string     `db:"user_id" json:"user_id"`
	Email     string     `db:"email" json:"email"`
	FullName  *string    `db:"full_name" json:"full_name"`
	Age       *int       `db:"age" json:"age"`
	Gender    *string    `db:"gender" json:"gender"`
	HeightCm  *float64   `db:"height_cm" json:"height_cm"`
	WeightKg  *float64   `db:"weight_kg" json:"weight_kg"`
	Phone     *string    `db:"phone" json:"phone"`
	Address   *string    `db:"address" json:"address"`
	CreatedAt *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at"`
}
