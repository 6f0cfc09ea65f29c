package handlers

import (
	"time"

	"posture-analyzer/internal/domain/dto"
	"posture-analyzer/internal/domain/mapper"
	"posture-analyzer/internal/usecases"
	consts "posture-analyzer/pkg/constants"
	"posture-analyzer/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	analysisService usecases.AnalysisService
	maxJSONSize     int64
}

// NewAnalysisHandler builds the handler. maxJSONSize bounds the image
// request body; zero or less leaves it to the app-wide body limit.
func NewAnalysisHandler(analysisService usecases.AnalysisService, maxJSONSize int64) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		maxJSONSize:     maxJSONSize,
	}
}

// AnalyzeImage
//
// @Summary      Analyze Image
// @Description  Runs pose analysis on a single base64-encoded image. A data URI prefix is accepted.
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      dto.AnalyzeImageRequest  true  "Image payload"
// @Success      200      {object}  entities.AnalysisResult
// @Failure      400      {object}  dto.ErrorResponse "No image provided / Invalid image encoding"
// @Failure      413      {object}  dto.ErrorResponse "Request body too large"
// @Failure      500      {object}  dto.ErrorResponse "Analysis failed"
// @Router       /api/analyze-image [post]
func (h *AnalysisHandler) AnalyzeImage(c *fiber.Ctx) error {
	size := int64(len(c.Body()))
	if size == 0 {
		return errors.HandleError(c, errors.ErrNoImage())
	}
	if h.maxJSONSize > 0 && size > h.maxJSONSize {
		return errors.HandleError(c, errors.ErrBodyTooLarge(size, h.maxJSONSize))
	}

	var req dto.AnalyzeImageRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleError(c, errors.ErrInvalidBody(err))
	}

	result, err := h.analysisService.AnalyzeImage(c.UserContext(), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(result)
}

// AnalyzeVideo
//
// @Summary      Analyze Video
// @Description  Runs pose analysis on an uploaded video file.
// @Tags         Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        video  formData  file    true   "Video file"
// @Param        mode   formData  string  false  "Analysis mode" default(desk)
// @Success      200    {object}  entities.AnalysisResult
// @Failure      400    {object}  dto.ErrorResponse "No video file uploaded"
// @Failure      500    {object}  dto.ErrorResponse "Analysis failed"
// @Router       /api/analyze-video [post]
func (h *AnalysisHandler) AnalyzeVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return errors.HandleError(c, errors.ErrNoVideo(err))
	}

	result, err := h.analysisService.AnalyzeVideo(c.UserContext(), fileHeader, c.FormValue("mode"))
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(result)
}

// Health
//
// @Summary      Health Check
// @Tags         System
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /api/health [get]
func (h *AnalysisHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    consts.StatusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListRuns
//
// @Summary      List Analysis Runs
// @Description  Returns the most recent analysis runs, newest first.
// @Tags         Analysis
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of runs" default(20)
// @Success      200    {object}  dto.AnalysisRunListResponse
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /api/analyses [get]
func (h *AnalysisHandler) ListRuns(c *fiber.Ctx) error {
	runs, err := h.analysisService.ListRuns(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(dto.AnalysisRunListResponse{
		Runs: mapper.RunsToDTO(runs),
	})
}
