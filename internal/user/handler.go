package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/calyxhealth/hospital-records/internal/auth"
	"github.com/calyxhealth/hospital-records/internal/httputil"
	patient "github.com/calyxhealth/hospital-records/internal/patient/entity"
)

// Handler exposes HTTP endpoints for registration, login and profile lookup.
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, tokens *auth.TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil, nil), tokens: tokens, logger: logger}
}

type registerDetails struct {
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
}

// RegisterRequest request body for the register endpoint. Role is the
// numeric code accepted on the wire: 0 PATIENT, 1 PROVIDER.
type RegisterRequest struct {
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	FullName    string           `json:"fullName"`
	Role        *int             `json:"role"`
	UserDetails *registerDetails `json:"user_details"`
}

func validateRegister(req *RegisterRequest) string {
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return "Email, password, and name are required"
	}
	if !strings.Contains(req.Email, "@") {
		return "Please provide a valid email address"
	}
	if len(req.Password) < 5 {
		return "Password must be at least 5 characters long"
	}
	if l := len(req.FullName); l < 2 || l > 100 {
		return "Full name must be between 2 and 100 characters"
	}
	if req.UserDetails == nil {
		return "user_details is required"
	}
	d := req.UserDetails
	if d.Age < 1 || d.Age > 150 {
		return "Age must be between 1 and 150"
	}
	switch d.Gender {
	case "Male", "Female", "Other":
	default:
		return "Gender must be Male, Female, or Other"
	}
	if d.HeightCm < 50 || d.HeightCm > 300 {
		return "Height must be between 50 and 300 cm"
	}
	if d.WeightKg < 10 || d.WeightKg > 500 {
		return "Weight must be between 10 and 500 kg"
	}
	if l := len(d.Phone); l < 10 || l > 20 {
		return "Phone number must be between 10 and 20 characters"
	}
	if l := len(d.Address); l < 5 || l > 200 {
		return "Address must be between 5 and 200 characters"
	}
	return ""
}

// Register creates a user and its linked patient profile. No token is issued
// here; clients log in separately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateRegister(&req); msg != "" {
		httputil.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	roleCode := 0
	if req.Role != nil {
		roleCode = *req.Role
	}
	role, err := auth.RoleFromCode(roleCode)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Role must be 0 (PATIENT) or 1 (PROVIDER)")
		return
	}

	d := req.UserDetails
	in := RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Details: patient.PatientDetails{
			FullName: req.FullName,
			Age:      &d.Age,
			Gender:   &d.Gender,
			HeightCm: &d.HeightCm,
			WeightKg: &d.WeightKg,
			Phone:    &d.Phone,
			Address:  &d.Address,
		},
	}

	id, err := h.svc.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httputil.RespondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Errorw("register failed", "err", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error during registration")
		return
	}
	httputil.RespondMessage(w, http.StatusCreated, "User registered successfully", map[string]string{"user_id": id})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the user plus a signed bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			httputil.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Errorw("login failed", "err", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "Login successful", map[string]any{
		"user":  u,
		"token": token,
	})
}

// WhoMI returns the caller's own id/email/role, re-fetched from the store.
func (h *Handler) WhoMI(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Errorw("profile lookup failed", "err", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	httputil.RespondData(w, http.StatusOK, map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
	})
}
