package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

// fakeUserStore реализует хранилище пользователей в памяти для тестов.
type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash string, name *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return models.User{}, repository.ErrConflict
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.byEmail[email] = user
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.byEmail[email]
	if !exists {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func newTestIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "finance-tracker", time.Hour)
}

func newAuthContext(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	return e.NewContext(req, rec), rec
}

// TestRegister проверяет регистрацию с выдачей рабочего токена.
func TestRegister(t *testing.T) {
	store := newFakeUserStore()
	issuer := newTestIssuer()
	handler := NewAuthHandler(store, issuer)

	body := `{"email":"User@Example.com","password":"s3cret-password","name":" Alex "}`
	c, rec := newAuthContext(t, "/api/v1/auth/register", body)

	if err := handler.Register(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.User.Email != "user@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}

	if resp.User.Name == nil || *resp.User.Name != "Alex" {
		t.Fatalf("expected trimmed name, got %v", resp.User.Name)
	}

	subject, err := issuer.Parse(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if subject != resp.User.ID {
		t.Fatalf("token subject %s does not match user %s", subject, resp.User.ID)
	}
}

// TestRegisterDuplicate проверяет конфликт по повторному email.
func TestRegisterDuplicate(t *testing.T) {
	handler := NewAuthHandler(newFakeUserStore(), newTestIssuer())

	body := `{"email":"user@example.com","password":"s3cret-password"}`

	c, rec := newAuthContext(t, "/api/v1/auth/register", body)
	if err := handler.Register(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, rec = newAuthContext(t, "/api/v1/auth/register", body)
	if err := handler.Register(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestRegisterShortPassword проверяет отказ валидатора запроса.
func TestRegisterShortPassword(t *testing.T) {
	handler := NewAuthHandler(newFakeUserStore(), newTestIssuer())

	c, rec := newAuthContext(t, "/api/v1/auth/register", `{"email":"user@example.com","password":"short"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// TestLogin проверяет вход с правильным паролем.
func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	issuer := newTestIssuer()
	handler := NewAuthHandler(store, issuer)

	c, rec := newAuthContext(t, "/api/v1/auth/register", `{"email":"user@example.com","password":"s3cret-password"}`)
	if err := handler.Register(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("failed to register user: %v (status %d)", err, rec.Code)
	}

	c, rec = newAuthContext(t, "/api/v1/auth/login", `{"email":"USER@example.com","password":"s3cret-password"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if _, err := issuer.Parse(resp.AccessToken); err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
}

// TestLoginWrongPassword проверяет отказ по неверному паролю.
func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	handler := NewAuthHandler(store, newTestIssuer())

	c, rec := newAuthContext(t, "/api/v1/auth/register", `{"email":"user@example.com","password":"s3cret-password"}`)
	if err := handler.Register(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("failed to register user: %v (status %d)", err, rec.Code)
	}

	c, rec = newAuthContext(t, "/api/v1/auth/login", `{"email":"user@example.com","password":"wrong-password"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// TestLoginUnknownEmail проверяет отказ по незнакомому email.
func TestLoginUnknownEmail(t *testing.T) {
	handler := NewAuthHandler(newFakeUserStore(), newTestIssuer())

	c, rec := newAuthContext(t, "/api/v1/auth/login", `{"email":"nobody@example.com","password":"s3cret-password"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// TestMe проверяет профиль по владельцу из контекста.
func TestMe(t *testing.T) {
	store := newFakeUserStore()
	handler := NewAuthHandler(store, newTestIssuer())

	user, err := store.Create(context.Background(), "user@example.com", "hash", nil)
	if err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c, rec := newAuthedContext(t, req, user.ID)

	if err := handler.Me(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]AuthUser
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["user"].ID != user.ID || resp["user"].Email != "user@example.com" {
		t.Fatalf("unexpected profile: %+v", resp["user"])
	}
}
