package server

import (
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	expenseHandler *handlers.ExpenseHandler,
	insightsHandler *handlers.InsightsHandler,
	assistantHandler *handlers.AssistantHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	expenses := api.Group("/expenses", authMiddleware)
	expenses.GET("", expenseHandler.List)
	expenses.POST("", expenseHandler.Create)
	expenses.POST("/upload_csv", expenseHandler.UploadCSV)
	expenses.GET("/export/csv", expenseHandler.ExportCSV)

	insights := api.Group("/insights", authMiddleware)
	insights.GET("/summary", insightsHandler.Summary)
	insights.GET("/spending_by_category", insightsHandler.SpendingByCategory)
	insights.GET("/monthly_spending", insightsHandler.MonthlySpending)

	predict := api.Group("/predict", authMiddleware)
	predict.GET("/next_month_total", insightsHandler.PredictNextMonth)

	assistant := api.Group("/assistant", authMiddleware, aiRateLimiter)
	assistant.POST("/ask", assistantHandler.Ask)
}
