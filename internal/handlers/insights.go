package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/insights"
)

type InsightsHandler struct {
	Store          ExpenseStore
	ForecastWindow int
}

// NewInsightsHandler создает обработчик аналитики расходов.
func NewInsightsHandler(store ExpenseStore, forecastWindow int) *InsightsHandler {
	return &InsightsHandler{Store: store, ForecastWindow: forecastWindow}
}

type SummaryResponse struct {
	TotalSpending      decimal.Decimal `json:"total_spending"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	Count              int             `json:"count"`
}

// Summary возвращает сводку по расходам пользователя.
// Агрегаты всегда считаются заново от текущего содержимого хранилища.
func (h *InsightsHandler) Summary(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	summary := insights.Summarize(expenses)
	return c.JSON(http.StatusOK, SummaryResponse{
		TotalSpending:      summary.Total,
		AverageTransaction: summary.Average,
		Count:              summary.Count,
	})
}

// SpendingByCategory возвращает суммы расходов по категориям.
func (h *InsightsHandler) SpendingByCategory(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	totals := insights.ByCategory(expenses)
	response := make(map[string]decimal.Decimal, len(totals))
	for category, total := range totals {
		response[category] = total.Round(2)
	}

	return c.JSON(http.StatusOK, response)
}

// MonthlySpending возвращает суммы расходов по месяцам ("YYYY-MM").
func (h *InsightsHandler) MonthlySpending(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	totals := insights.ByMonth(expenses)
	response := make(map[string]decimal.Decimal, len(totals))
	for month, total := range totals {
		response[month.String()] = total.Round(2)
	}

	return c.JSON(http.StatusOK, response)
}

// PredictNextMonth возвращает прогноз расходов на следующий месяц.
func (h *InsightsHandler) PredictNextMonth(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	forecast := insights.PredictNextMonth(expenses, h.ForecastWindow)
	return c.JSON(http.StatusOK, forecast)
}
