package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/expense"
	"example.com/finance-tracker/backend/internal/models"
)

const dateLayout = "2006-01-02"

// ExpenseStore задает операции хранилища расходов, нужные фасаду.
type ExpenseStore interface {
	Insert(ctx context.Context, userID uuid.UUID, record expense.Record) (models.Expense, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error)
}

type ExpenseHandler struct {
	Store          ExpenseStore
	MaxUploadBytes int64
}

// NewExpenseHandler создает обработчик операций с расходами.
func NewExpenseHandler(store ExpenseStore, maxUploadBytes int64) *ExpenseHandler {
	return &ExpenseHandler{Store: store, MaxUploadBytes: maxUploadBytes}
}

type CreateExpenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type UploadCSVResponse struct {
	Message       string             `json:"message"`
	AcceptedCount int                `json:"accepted_count"`
	Failures      []expense.RowError `json:"failures"`
}

// Create валидирует и сохраняет один расход.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	candidate := expense.Candidate{
		Date:        req.Date,
		Category:    req.Category,
		Amount:      rawToString(req.Amount),
		Description: req.Description,
	}

	record, violations := expense.Validate(candidate)
	if len(violations) > 0 {
		// Формат ответа несет одно нарушение; остальные нужны пакетной загрузке.
		return c.JSON(http.StatusBadRequest, violations[0])
	}

	item, err := h.Store.Insert(c.Request().Context(), userID, record)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(item))
}

// List возвращает все расходы пользователя, новые даты первыми.
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, item := range expenses {
		response = append(response, toExpenseResponse(item))
	}

	return c.JSON(http.StatusOK, response)
}

// UploadCSV выполняет пакетную загрузку расходов из CSV-файла.
// Операция не атомарна: валидные строки фиксируются, сбойные
// отчитываются по отдельности с номером строки.
func (h *ExpenseHandler) UploadCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		return badRequest(c, "file is too large")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return serverError(c)
	}
	defer src.Close()

	reader, err := expense.NewBatchReader(src)
	if err != nil {
		var missing *expense.MissingColumnError
		switch {
		case errors.As(err, &missing):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":  expense.CodeMissingColumn,
				"column": missing.Column,
			})
		case errors.Is(err, expense.ErrEmptyFile):
			return badRequest(c, "csv file is empty")
		default:
			return badRequest(c, "invalid csv header")
		}
	}

	accepted := 0
	failures := make([]expense.RowError, 0)

	for {
		result, more := reader.Next()
		if !more {
			break
		}

		if result.Err != nil {
			failures = append(failures, *result.Err)
			continue
		}

		record, violations := expense.Validate(result.Candidate)
		if len(violations) > 0 {
			failures = append(failures, expense.RowError{Row: result.Row, Code: violations[0].Code})
			continue
		}

		if _, err := h.Store.Insert(c.Request().Context(), userID, record); err != nil {
			// Уже зафиксированные строки остаются; отката нет.
			return serverError(c)
		}
		accepted++
	}

	message := fmt.Sprintf("%d expenses imported, %d rows failed.", accepted, len(failures))
	return c.JSON(http.StatusOK, UploadCSVResponse{
		Message:       message,
		AcceptedCount: accepted,
		Failures:      failures,
	})
}

// ExportCSV выгружает расходы пользователя в CSV-файл.
func (h *ExpenseHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenses, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"id", "date", "category", "amount", "description"}); err != nil {
		return serverError(c)
	}

	for _, item := range expenses {
		record := []string{
			item.ID.String(),
			item.Date.Format(dateLayout),
			item.Category,
			item.Amount.StringFixed(2),
			item.Description,
		}
		if err := writer.Write(record); err != nil {
			return serverError(c)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="expenses.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func toExpenseResponse(item models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          item.ID,
		Date:        item.Date.Format(dateLayout),
		Category:    item.Category,
		Amount:      item.Amount,
		Description: item.Description,
	}
}

// rawToString приводит JSON-значение amount к строке для валидатора:
// клиенты шлют и числа, и строки.
func rawToString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	if strings.HasPrefix(trimmed, `"`) {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return trimmed
		}
		return value
	}

	return trimmed
}
