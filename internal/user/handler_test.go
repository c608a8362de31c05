package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/calyxhealth/hospital-records/internal/auth"
)

func newTestHandler(repo Repository) (*Handler, *auth.TokenService) {
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour})
	return &Handler{
		svc:    NewService(nil, repo, auth.BcryptHasher{Cost: 4}),
		tokens: tokens,
		logger: zap.NewNop().Sugar(),
	}, tokens
}

const validRegisterBody = `{
	"email": "a@x.com",
	"password": "secret",
	"fullName": "A B",
	"role": 0,
	"user_details": {
		"age": 30, "gender": "Male", "height_cm": 170, "weight_kg": 70,
		"phone": "1234567890", "address": "1 Main St"
	}
}`

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	h, _ := newTestHandler(newFakeUserRepo())

	rec := postJSON(h.Register, "/api/auth/register", validRegisterBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			UserID string `json:"user_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.UserID == "" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing email", `{"password":"secret","fullName":"A B","role":0,"user_details":{"age":30,"gender":"Male","height_cm":170,"weight_kg":70,"phone":"1234567890","address":"1 Main St"}}`},
		{"short password", `{"email":"a@x.com","password":"abc","fullName":"A B","role":0,"user_details":{"age":30,"gender":"Male","height_cm":170,"weight_kg":70,"phone":"1234567890","address":"1 Main St"}}`},
		{"bad gender", `{"email":"a@x.com","password":"secret","fullName":"A B","role":0,"user_details":{"age":30,"gender":"X","height_cm":170,"weight_kg":70,"phone":"1234567890","address":"1 Main St"}}`},
		{"missing details", `{"email":"a@x.com","password":"secret","fullName":"A B","role":0}`},
		{"bad role code", `{"email":"a@x.com","password":"secret","fullName":"A B","role":7,"user_details":{"age":30,"gender":"Male","height_cm":170,"weight_kg":70,"phone":"1234567890","address":"1 Main St"}}`},
		{"not json", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(newFakeUserRepo())
			rec := postJSON(h.Register, "/api/auth/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	h, _ := newTestHandler(newFakeUserRepo())

	if rec := postJSON(h.Register, "/api/auth/register", validRegisterBody); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	// second attempt with a different name still conflicts on email
	body := strings.Replace(validRegisterBody, "A B", "C D", 1)
	rec := postJSON(h.Register, "/api/auth/register", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second register status = %d, want 400", rec.Code)
	}
}

func TestLoginHandlerIssuesVerifiableToken(t *testing.T) {
	repo := newFakeUserRepo()
	h, tokens := newTestHandler(repo)

	if rec := postJSON(h.Register, "/api/auth/register", validRegisterBody); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec := postJSON(h.Login, "/api/auth/login", `{"email":"a@x.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID    string `json:"id"`
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Token == "" {
		t.Fatal("no token in login response")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("login response leaks password hash")
	}

	claims, err := tokens.Verify(body.Data.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != body.Data.User.ID || claims.Email != "a@x.com" || string(claims.Role) != body.Data.User.Role {
		t.Errorf("claims %+v do not match user %+v", claims, body.Data.User)
	}
}

func TestLoginHandlerUniformFailure(t *testing.T) {
	h, _ := newTestHandler(newFakeUserRepo())

	if rec := postJSON(h.Register, "/api/auth/register", validRegisterBody); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	unknown := postJSON(h.Login, "/api/auth/login", `{"email":"nobody@x.com","password":"secret"}`)
	wrongPw := postJSON(h.Login, "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`)

	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", unknown.Code, wrongPw.Code)
	}
	// identical message avoids user enumeration
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Errorf("failure bodies differ: %s vs %s", unknown.Body.String(), wrongPw.Body.String())
	}
}

func TestLoginHandlerMissingFields(t *testing.T) {
	h, _ := newTestHandler(newFakeUserRepo())

	rec := postJSON(h.Login, "/api/auth/login", `{"email":"a@x.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWhoMIHandler(t *testing.T) {
	repo := newFakeUserRepo()
	h, _ := newTestHandler(repo)

	if rec := postJSON(h.Register, "/api/auth/register", validRegisterBody); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	u := repo.users["a@x.com"]

	req := httptest.NewRequest(http.MethodGet, "/api/auth/whoMI", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}))
	rec := httptest.NewRecorder()
	h.WhoMI(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != u.ID || body.Data.Email != "a@x.com" || body.Data.Role != "PATIENT" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWhoMIHandlerUserGone(t *testing.T) {
	h, _ := newTestHandler(newFakeUserRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/whoMI", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: "deleted", Email: "x@x.com", Role: auth.RolePatient}))
	rec := httptest.NewRecorder()
	h.WhoMI(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
