package insights

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"example.com/finance-tracker/backend/internal/models"
)

// DefaultForecastWindow задает число последних месяцев в скользящем среднем.
const DefaultForecastWindow = 3

// Forecast содержит прогноз расходов на следующий календарный месяц.
type Forecast struct {
	Prediction decimal.Decimal `json:"prediction"`
	Message    string          `json:"message"`
}

// PredictNextMonth строит прогноз скользящим средним по последним window
// месяцам истории. Функция никогда не возвращает ошибку: при нехватке
// истории прогноз деградирует до оценки с низкой уверенностью.
func PredictNextMonth(expenses []models.Expense, window int) Forecast {
	if window <= 0 {
		window = DefaultForecastWindow
	}

	monthly := ByMonth(expenses)
	if len(monthly) == 0 {
		return Forecast{
			Prediction: decimal.Zero,
			Message:    "No expense history available; low-confidence forecast of 0.",
		}
	}

	keys := make([]MonthKey, 0, len(monthly))
	for key := range monthly {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	if len(keys) == 1 {
		total := monthly[keys[0]].Round(2)
		return Forecast{
			Prediction: total,
			Message:    "Only one month of history; low-confidence forecast equal to that month's total.",
		}
	}

	if window > len(keys) {
		window = len(keys)
	}

	sum := decimal.Zero
	for _, key := range keys[len(keys)-window:] {
		sum = sum.Add(monthly[key])
	}
	prediction := sum.Div(decimal.NewFromInt(int64(window))).Round(2)

	return Forecast{
		Prediction: prediction,
		Message:    fmt.Sprintf("Moving average of the last %d month(s) of spending.", window),
	}
}
