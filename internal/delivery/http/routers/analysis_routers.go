package routers

import (
	"posture-analyzer/internal/delivery/http/handlers"
	"posture-analyzer/internal/usecases"

	"github.com/gofiber/fiber/v2"
)

func SetupAnalysisRoutes(app *fiber.App, analysisService usecases.AnalysisService, maxJSONSize int64) {
	analysisHandler := handlers.NewAnalysisHandler(analysisService, maxJSONSize)

	api := app.Group("/api")
	api.Post("/analyze-image", analysisHandler.AnalyzeImage)
	api.Post("/analyze-video", analysisHandler.AnalyzeVideo)
	api.Get("/health", analysisHandler.Health)
	api.Get("/analyses", analysisHandler.ListRuns)
}
