package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/insights"
)

type AssistantHandler struct {
	AI    *ai.Service
	Store ExpenseStore
}

// NewAssistantHandler создает обработчик вопросов к ассистенту.
func NewAssistantHandler(service *ai.Service, store ExpenseStore) *AssistantHandler {
	return &AssistantHandler{AI: service, Store: store}
}

type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

// Ask отвечает на вопрос о расходах, подмешивая в промпт агрегаты
// пользователя. Внешний вызов остается вне синхронного пути аналитики.
func (h *AssistantHandler) Ask(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	summary := insights.Summarize(expenses)
	snapshot := ai.SpendingSnapshot{
		Count:              summary.Count,
		TotalSpending:      summary.Total.StringFixed(2),
		AverageTransaction: summary.Average.StringFixed(2),
		SpendingByCategory: make(map[string]string),
		MonthlySpending:    make(map[string]string),
	}
	for category, total := range insights.ByCategory(expenses) {
		snapshot.SpendingByCategory[category] = total.StringFixed(2)
	}
	for month, total := range insights.ByMonth(expenses) {
		snapshot.MonthlySpending[month.String()] = total.StringFixed(2)
	}

	answer, err := h.AI.Ask(c.Request().Context(), req.Question, snapshot)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "assistant is unavailable"})
	}

	return c.JSON(http.StatusOK, AskResponse{Answer: answer})
}
