package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/calyxhealth/hospital-records/internal/auth"
	patient "github.com/calyxhealth/hospital-records/internal/patient/entity"
	"github.com/calyxhealth/hospital-records/internal/user/entity"
	userrepo "github.com/calyxhealth/hospital-records/internal/user/repo"
	"github.com/calyxhealth/hospital-records/pkg/database"
	"github.com/calyxhealth/hospital-records/pkg/utilities"
)

// Repository is the data access surface the service needs.
type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	CreateWithDetails(ctx context.Context, u *entity.User, d *patient.PatientDetails) error
}

// sentinel errors for common failure modes
var (
	ErrEmailTaken = errors.New("user already exists")
	// ErrBadCredentials is returned for unknown email and wrong password
	// alike, so callers cannot enumerate accounts.
	ErrBadCredentials = errors.New("invalid credentials")
	ErrUserNotFound   = errors.New("user not found")
)

// Service orchestrates registration, authentication and profile lookup.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
}

func NewService(db *sqlx.DB, r Repository, hasher auth.PasswordHasher) *Service {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = auth.BcryptHasher{Cost: 10}
	}
	return &Service{repo: r, hasher: hasher}
}

// RegisterInput is the validated registration payload. Details.UserID is
// assigned by the service.
type RegisterInput struct {
	Email    string
	Password string
	Role     auth.Role
	Details  patient.PatientDetails
}

// Register hashes the password and creates the user plus its patient_details
// row atomically. Returns the new user id.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.TrimSpace(in.Email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	u := &entity.User{
		ID:           utilities.NewUserID(),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	d := in.Details
	d.UserID = u.ID

	if err := s.repo.CreateWithDetails(ctx, u, &d); err != nil {
		// the existence check races with concurrent registrations; the
		// unique index is authoritative
		if database.IsUniqueViolation(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return u.ID, nil
}

// Authenticate verifies email/password and returns the user on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Profile re-fetches the caller's user row; token claims alone are not
// trusted for profile data.
func (s *Service) Profile(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
