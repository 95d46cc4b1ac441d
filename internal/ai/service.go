package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SpendingSnapshot содержит агрегаты пользователя, которые подмешиваются
// в промпт, чтобы ассистент отвечал по реальным данным, а не выдумывал их.
type SpendingSnapshot struct {
	Count              int               `json:"count"`
	TotalSpending      string            `json:"total_spending"`
	AverageTransaction string            `json:"average_transaction"`
	SpendingByCategory map[string]string `json:"spending_by_category"`
	MonthlySpending    map[string]string `json:"monthly_spending"`
}

type Service struct {
	client Client
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Ask отвечает на вопрос пользователя о его расходах.
func (s *Service) Ask(ctx context.Context, question string, snapshot SpendingSnapshot) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}

	messages := []Message{
		{
			Role: "system",
			Content: "You are a personal finance assistant. Answer briefly in plain text, " +
				"using only the spending data provided. If the data is insufficient, say so.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Spending data:\n%s\n\nQuestion: %s", payload, question),
		},
	}

	answer, err := s.client.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("ai returned an empty answer")
	}

	return answer, nil
}
