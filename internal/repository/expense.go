package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/finance-tracker/backend/internal/expense"
	"example.com/finance-tracker/backend/internal/models"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository создает хранилище расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Insert добавляет провалидированную запись и назначает ей идентификатор.
// Для валидной записи отказ возможен только при недоступности базы.
func (r *ExpenseRepository) Insert(ctx context.Context, userID uuid.UUID, record expense.Record) (models.Expense, error) {
	item := models.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        record.Date,
		Category:    record.Category,
		Amount:      record.Amount,
		Description: record.Description,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO expenses (id, user_id, expense_date, category, amount, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		item.ID, item.UserID, item.Date, item.Category, item.Amount.String(), item.Description,
	).Scan(&item.CreatedAt)
	if err != nil {
		return models.Expense{}, err
	}

	return item, nil
}

// ListByUser возвращает все расходы пользователя, новые даты первыми.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, expense_date, category, amount::text, description, created_at
		 FROM expenses
		 WHERE user_id = $1
		 ORDER BY expense_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var item models.Expense
		var amount string

		err := rows.Scan(&item.ID, &item.UserID, &item.Date, &item.Category, &amount, &item.Description, &item.CreatedAt)
		if err != nil {
			return nil, err
		}

		item.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount: %w", err)
		}

		expenses = append(expenses, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}
