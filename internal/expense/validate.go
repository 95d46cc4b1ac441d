package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Коды ошибок валидации, возвращаемые клиенту как есть.
const (
	CodeInvalidDate     = "InvalidDate"
	CodeInvalidCategory = "InvalidCategory"
	CodeInvalidAmount   = "InvalidAmount"
)

// Допустимые форматы даты во входных данных.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
}

// Candidate хранит сырые строковые поля до валидации.
type Candidate struct {
	Date        string
	Category    string
	Amount      string
	Description string
}

// Record содержит провалидированную запись; id и владельца назначает хранилище.
type Record struct {
	Date        time.Time
	Category    string
	Amount      decimal.Decimal
	Description string
}

// FieldError описывает одно нарушение с привязкой к полю.
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"error"`
}

// Validate проверяет кандидата и собирает все нарушения сразу:
// пакетной загрузке нужна полная диагностика по строке, а не первая ошибка.
func Validate(candidate Candidate) (Record, []FieldError) {
	var record Record
	var violations []FieldError

	date, ok := parseDate(candidate.Date)
	if !ok {
		violations = append(violations, FieldError{Field: "date", Code: CodeInvalidDate})
	}

	category := strings.TrimSpace(candidate.Category)
	if category == "" {
		violations = append(violations, FieldError{Field: "category", Code: CodeInvalidCategory})
	}

	amount, ok := parseAmount(candidate.Amount)
	if !ok {
		violations = append(violations, FieldError{Field: "amount", Code: CodeInvalidAmount})
	}

	if len(violations) > 0 {
		return record, violations
	}

	record = Record{
		Date:        date,
		Category:    category,
		Amount:      amount,
		Description: candidate.Description,
	}

	return record, nil
}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

func parseAmount(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Decimal{}, false
	}

	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, false
	}

	// Ноль допустим, отрицательные суммы отклоняются.
	if parsed.IsNegative() {
		return decimal.Decimal{}, false
	}

	return parsed, true
}
