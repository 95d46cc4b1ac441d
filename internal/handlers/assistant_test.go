package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/auth"
)

type stubChatClient struct {
	answer   string
	err      error
	lastUser string
}

func (s *stubChatClient) Chat(_ context.Context, messages []ai.Message) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			s.lastUser = m.Content
		}
	}
	return s.answer, s.err
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newAssistantContext(t *testing.T, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/ask", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	c := e.NewContext(req, rec)
	c.Set(auth.ContextUserIDKey, userID)
	return c, rec
}

// TestAssistantAsk проверяет ответ ассистента с агрегатами в промпте.
func TestAssistantAsk(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	seedExpense(t, store, userID, "2024-01-05", "Groceries", "50.25")

	client := &stubChatClient{answer: "You spent 50.25 on groceries."}
	handler := NewAssistantHandler(ai.NewService(client), store)

	c, rec := newAssistantContext(t, `{"question":"What did I spend on?"}`, userID)
	if err := handler.Ask(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Answer != "You spent 50.25 on groceries." {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}

	if !strings.Contains(client.lastUser, "Groceries") || !strings.Contains(client.lastUser, "50.25") {
		t.Fatalf("expected spending data in prompt, got %q", client.lastUser)
	}
}

// TestAssistantAskEmptyQuestion проверяет отказ на пустом вопросе.
func TestAssistantAskEmptyQuestion(t *testing.T) {
	handler := NewAssistantHandler(ai.NewService(&stubChatClient{answer: "x"}), newMemStore())

	c, rec := newAssistantContext(t, `{"question":""}`, uuid.New())
	if err := handler.Ask(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// TestAssistantAskUpstreamFailure проверяет деградацию при сбое AI.
func TestAssistantAskUpstreamFailure(t *testing.T) {
	client := &stubChatClient{err: errors.New("upstream timeout")}
	handler := NewAssistantHandler(ai.NewService(client), newMemStore())

	c, rec := newAssistantContext(t, `{"question":"How much did I spend?"}`, uuid.New())
	if err := handler.Ask(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}
