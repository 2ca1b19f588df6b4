package rag_http

import (
	"errors"
	"log/slog"
	"net/http"

	"sheetqa/internal/domain"
	"sheetqa/internal/infra/logger"
	"sheetqa/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AnswerRequest is the body of POST /generateAnswer.
type AnswerRequest struct {
	Question string `json:"question"`
}

type Handler struct {
	answerUsecase usecase.AnswerQuestionUsecase
	snapshot      *domain.DocumentSnapshot
	strictErrors  bool
	logger        *slog.Logger
}

// NewHandler creates the HTTP handler. With strictErrors, pipeline failures map
// to 5xx statuses instead of an empty 200 answer.
func NewHandler(
	answerUsecase usecase.AnswerQuestionUsecase,
	snapshot *domain.DocumentSnapshot,
	strictErrors bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
		snapshot:      snapshot,
		strictErrors:  strictErrors,
		logger:        logger,
	}
}

// Answer a question from the loaded documents
// (POST /generateAnswer)
func (h *Handler) GenerateAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	ctx := logger.WithRequestID(c.Request().Context(), requestID)

	output, err := h.answerUsecase.Execute(ctx, usecase.AnswerQuestionInput{
		Question:  req.Question,
		RequestID: requestID,
	})
	return h.answerOrEmpty(c, output, err)
}

// answerOrEmpty is the one place where a pipeline failure becomes a response.
// By default every failure is an empty 200 body, so callers cannot tell "no
// answer" from an internal error.
func (h *Handler) answerOrEmpty(c echo.Context, output *usecase.AnswerQuestionOutput, err error) error {
	if err == nil && output != nil {
		return c.String(http.StatusOK, output.Answer)
	}
	if !h.strictErrors {
		return c.String(http.StatusOK, "")
	}
	return c.String(failureStatus(err), "")
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// (GET /healthz)
func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// (GET /readyz)
func (h *Handler) Readyz(c echo.Context) error {
	if h.snapshot == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ready",
		"documents": h.snapshot.Len(),
	})
}

// (GET /openapi.yaml)
func (h *Handler) OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/yaml", OpenAPISpec())
}
