package insights

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"example.com/finance-tracker/backend/internal/models"
)

// Summary содержит сводку по расходам одного пользователя.
type Summary struct {
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
}

// MonthKey задает сравнимый ключ месяца; форматирование в "YYYY-MM"
// выполняется только на границе API.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before сообщает, предшествует ли месяц k месяцу other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Summarize считает количество, сумму и средний чек за один проход.
// Среднее равно нулю при пустом наборе.
func Summarize(expenses []models.Expense) Summary {
	total := decimal.Zero
	for _, item := range expenses {
		total = total.Add(item.Amount)
	}

	average := decimal.Zero
	if len(expenses) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(expenses)))).Round(2)
	}

	return Summary{
		Count:   len(expenses),
		Total:   total.Round(2),
		Average: average,
	}
}

// ByCategory суммирует расходы по точному значению категории.
func ByCategory(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(expenses))
	for _, item := range expenses {
		totals[item.Category] = totals[item.Category].Add(item.Amount)
	}

	return totals
}

// ByMonth суммирует расходы по календарному месяцу даты.
func ByMonth(expenses []models.Expense) map[MonthKey]decimal.Decimal {
	totals := make(map[MonthKey]decimal.Decimal)
	for _, item := range expenses {
		key := MonthKey{Year: item.Date.Year(), Month: item.Date.Month()}
		totals[key] = totals[key].Add(item.Amount)
	}

	return totals
}
