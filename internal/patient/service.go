package patient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/calyxhealth/hospital-records/internal/auth"
	"github.com/calyxhealth/hospital-records/internal/patient/entity"
	patientrepo "github.com/calyxhealth/hospital-records/internal/patient/repo"
	"github.com/calyxhealth/hospital-records/pkg/database"
)

// allowedUpdateFields is the allow-list of columns a partial update may
// touch, in the order they appear in the statement.
var allowedUpdateFields = []string{"full_name", "age", "gender", "height_cm", "weight_kg", "phone", "address"}

// Repository is the data access surface the service needs.
type Repository interface {
	ListSummaries(ctx context.Context) ([]entity.Summary, error)
	GetRecord(ctx context.Context, userID string) (*entity.Record, error)
	Insert(ctx context.Context, d *entity.PatientDetails) (*entity.PatientDetails, error)
	Update(ctx context.Context, userID string, sets []patientrepo.Field) (*entity.PatientDetails, error)
}

// sentinel errors for common failure modes
var (
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("patient details not found")
	ErrAlreadyExists     = errors.New("patient details already exist")
	ErrUnknownUser       = errors.New("user id does not exist")
	ErrNoUpdatableFields = errors.New("no fields to update")
)

// Service enforces the provider-or-owner access rules over patient records.
type Service struct {
	repo Repository
}

func NewService(db *sqlx.DB, r Repository) *Service {
	if r == nil {
		r = patientrepo.NewPatientRepo(db)
	}
	return &Service{repo: r}
}

// canAccess reports whether the caller may read or write the given patient's
// record: any PROVIDER, or the owner themselves.
func canAccess(caller *auth.Claims, userID string) bool {
	return caller.Role == auth.RoleProvider || caller.UserID == userID
}

// List returns all patient summaries. Role gating happens at the route.
func (s *Service) List(ctx context.Context) ([]entity.Summary, error) {
	return s.repo.ListSummaries(ctx)
}

// Get returns one patient record for a provider or the record's owner.
func (s *Service) Get(ctx context.Context, caller *auth.Claims, userID string) (*entity.Record, error) {
	if !canAccess(caller, userID) {
		return nil, ErrForbidden
	}
	rec, err := s.repo.GetRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Create inserts details for an existing user. Constraint violations map to
// the sentinel kinds the handlers translate to 400/409.
func (s *Service) Create(ctx context.Context, d *entity.PatientDetails) (*entity.PatientDetails, error) {
	row, err := s.repo.Insert(ctx, d)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return nil, ErrUnknownUser
		case database.IsUniqueViolation(err):
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return row, nil
}

// Update applies the allow-listed subset of fields present in body to the
// patient's row. A body with no recognized field is rejected before any
// store call.
func (s *Service) Update(ctx context.Context, caller *auth.Claims, userID string, body map[string]any) (*entity.PatientDetails, error) {
	if !canAccess(caller, userID) {
		return nil, ErrForbidden
	}

	sets := make([]patientrepo.Field, 0, len(allowedUpdateFields))
	for _, col := range allowedUpdateFields {
		if v, ok := body[col]; ok {
			sets = append(sets, patientrepo.Field{Column: col, Value: v})
		}
	}
	if len(sets) == 0 {
		return nil, ErrNoUpdatableFields
	}

	row, err := s.repo.Update(ctx, userID, sets)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}
