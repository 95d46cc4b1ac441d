package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

// UserStore задает операции с пользователями, нужные авторизации.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, name *string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type AuthHandler struct {
	Users  UserStore
	Tokens *auth.TokenIssuer
}

// NewAuthHandler создает обработчик регистрации и входа.
func NewAuthHandler(users UserStore, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        AuthUser  `json:"user"`
}

// Register создает пользователя и сразу выдает токен доступа.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return serverError(c)
	}

	user, err := h.Users.Create(c.Request().Context(), normalizeEmail(req.Email), passwordHash, normalizeName(req.Name))
	if errors.Is(err, repository.ErrConflict) {
		return conflict(c, "user already exists")
	}
	if err != nil {
		return serverError(c)
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// Login проверяет пароль и выдает токен доступа.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return unauthorized(c)
	}
	if err != nil {
		return serverError(c)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return unauthorized(c)
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// Me возвращает профиль владельца токена.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "user not found")
	}
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string]AuthUser{"user": toAuthUser(user)})
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user models.User) error {
	token, expiresAt, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(status, AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toAuthUser(user),
	})
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{ID: user.ID, Email: user.Email, Name: user.Name}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
