package patient

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/calyxhealth/hospital-records/internal/auth"
	"github.com/calyxhealth/hospital-records/internal/httputil"
	"github.com/calyxhealth/hospital-records/internal/patient/entity"
)

// Handler exposes HTTP endpoints for patient record CRUD.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil), logger: logger}
}

// List is provider-only (gated at the route) and returns all patients.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list patients failed", "err", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	httputil.RespondData(w, http.StatusOK, rows)
}

// Get returns one patient record to a provider or the record's owner.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID := r.PathValue("user_id")

	rec, err := h.svc.Get(r.Context(), claims, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, "Forbidden")
		case errors.Is(err, ErrNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Patient not found")
		default:
			h.logger.Errorw("get patient failed", "err", err, "user_id", userID)
			httputil.RespondError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httputil.RespondData(w, http.StatusOK, rec)
}

// CreateRequest request body for provider-created patient details.
type CreateRequest struct {
	UserID   string   `json:"user_id"`
	FullName string   `json:"full_name"`
	Age      *int     `json:"age"`
	Gender   *string  `json:"gender"`
	HeightCm *float64 `json:"height_cm"`
	WeightKg *float64 `json:"weight_kg"`
	Phone    *string  `json:"phone"`
	Address  *string  `json:"address"`
}

// Create is provider-only and adds details for an already-registered user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid create patient payload", "err", err)
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.FullName == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user_id and full_name required")
		return
	}

	row, err := h.svc.Create(r.Context(), &entity.PatientDetails{
		UserID:   req.UserID,
		FullName: req.FullName,
		Age:      req.Age,
		Gender:   req.Gender,
		HeightCm: req.HeightCm,
		WeightKg: req.WeightKg,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownUser):
			httputil.RespondError(w, http.StatusBadRequest, "User id does not exist")
		case errors.Is(err, ErrAlreadyExists):
			httputil.RespondError(w, http.StatusConflict, "Patient details already exist")
		default:
			h.logger.Errorw("create patient failed", "err", err, "user_id", req.UserID)
			httputil.RespondError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httputil.RespondData(w, http.StatusCreated, row)
}

// Update applies a partial, allow-listed update for a provider or the owner.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID := r.PathValue("user_id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Debugw("invalid update patient payload", "err", err)
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	row, err := h.svc.Update(r.Context(), claims, userID, body)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, "Forbidden")
		case errors.Is(err, ErrNoUpdatableFields):
			httputil.RespondError(w, http.StatusBadRequest, "No fields to update")
		case errors.Is(err, ErrNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Patient details not found")
		default:
			h.logger.Errorw("update patient failed", "err", err, "user_id", userID)
			httputil.RespondError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httputil.RespondData(w, http.StatusOK, row)
}
