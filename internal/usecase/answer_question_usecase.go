package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sheetqa/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names the step an answer request has reached.
type Stage string

const (
	StageReceived       Stage = "received"
	StageRanking        Stage = "ranking"
	StagePromptBuilding Stage = "prompt_building"
	StageCompleting     Stage = "completing"
	StageAnswered       Stage = "answered"
	StageFailed         Stage = "failed"
)

// AnswerQuestionInput carries one question. RequestID is generated when empty.
type AnswerQuestionInput struct {
	Question  string
	RequestID string
}

// AnswerQuestionOutput records how far a request got and what it produced.
// Stage is StageAnswered or StageFailed; FailedStage is set on failure.
type AnswerQuestionOutput struct {
	RequestID      string
	Answer         string
	Stage          Stage
	FailedStage    Stage
	Ranked         []domain.ScoredDocument
	IncludedTitles []string
	ContextWords   int
	Prompt         string
}

// AnswerQuestionUsecase runs ranking, prompt building and completion for a question.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error)
	// BuildPrompt runs ranking and prompt building without calling the completion model.
	BuildPrompt(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error)
}

// AnswerConfig holds per-request tuning shared by every question.
type AnswerConfig struct {
	WordBudget int
	Completion domain.CompletionOptions
}

type answerQuestionUsecase struct {
	snapshot      *domain.DocumentSnapshot
	ranker        RankDocumentsUsecase
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	cfg           AnswerConfig
	metrics       PipelineMetrics
	logger        *slog.Logger
}

// NewAnswerQuestionUsecase wires the answer pipeline over a loaded snapshot.
func NewAnswerQuestionUsecase(
	snapshot *domain.DocumentSnapshot,
	ranker RankDocumentsUsecase,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	cfg AnswerConfig,
	metrics PipelineMetrics,
	logger *slog.Logger,
) AnswerQuestionUsecase {
	if cfg.WordBudget <= 0 {
		cfg.WordBudget = DefaultWordBudget
	}
	return &answerQuestionUsecase{
		snapshot:      snapshot,
		ranker:        ranker,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		cfg:           cfg,
		metrics:       metricsOrNoop(metrics),
		logger:        logger,
	}
}

// Execute returns the output together with any error. On failure the output is
// still non-nil so callers can see the stage that failed.
func (u *answerQuestionUsecase) Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error) {
	out, err := u.prepare(ctx, input)
	if err != nil {
		return out, err
	}
	logger := u.logger.With(slog.String("request_id", out.RequestID))

	out.Stage = StageCompleting
	answer, err := u.complete(ctx, out.Prompt)
	if err != nil {
		return u.fail(ctx, logger, out, err)
	}

	out.Answer = answer
	out.Stage = StageAnswered
	u.metrics.ObserveAnswer(StageAnswered, len(out.IncludedTitles), out.ContextWords)
	logger.InfoContext(ctx, "answer_completed",
		slog.Int("included_documents", len(out.IncludedTitles)),
		slog.Int("context_words", out.ContextWords),
		slog.Int("answer_length", len(answer)),
	)
	return out, nil
}

func (u *answerQuestionUsecase) BuildPrompt(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error) {
	return u.prepare(ctx, input)
}

func (u *answerQuestionUsecase) prepare(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error) {
	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	out := &AnswerQuestionOutput{RequestID: requestID, Stage: StageReceived}
	logger := u.logger.With(slog.String("request_id", requestID))

	logger.InfoContext(ctx, "question_received", slog.Int("question_length", len(input.Question)))
	if strings.TrimSpace(input.Question) == "" {
		return u.fail(ctx, logger, out, errors.New("question is required"))
	}

	out.Stage = StageRanking
	start := time.Now()
	ranked, err := u.ranker.Execute(ctx, input.Question, u.snapshot)
	u.metrics.ObserveStage(StageRanking, time.Since(start))
	if err != nil {
		return u.fail(ctx, logger, out, err)
	}
	out.Ranked = ranked

	out.Stage = StagePromptBuilding
	start = time.Now()
	_, span := otel.Tracer("sheetqa/usecase").Start(ctx, "build_prompt")
	built, err := u.promptBuilder.Build(input.Question, u.snapshot, ranked, u.cfg.WordBudget)
	u.metrics.ObserveStage(StagePromptBuilding, time.Since(start))
	if err != nil {
		endSpan(span, err)
		return u.fail(ctx, logger, out, err)
	}
	span.SetAttributes(
		attribute.Int("prompt.included_documents", len(built.IncludedTitles)),
		attribute.Int("prompt.context_words", built.ContextWords),
	)
	span.End()

	out.Prompt = built.Prompt
	out.IncludedTitles = built.IncludedTitles
	out.ContextWords = built.ContextWords
	logger.DebugContext(ctx, "prompt_built",
		slog.Any("included_titles", built.IncludedTitles),
		slog.Int("context_words", built.ContextWords),
	)
	return out, nil
}

func (u *answerQuestionUsecase) complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("sheetqa/usecase").Start(ctx, "complete",
		trace.WithAttributes(attribute.String("llm.model", u.llmClient.Version())))
	start := time.Now()
	answer, err := u.llmClient.Complete(ctx, prompt, u.cfg.Completion)
	u.metrics.ObserveStage(StageCompleting, time.Since(start))
	if err != nil {
		endSpan(span, err)
		if !errors.Is(err, domain.ErrCompletion) {
			err = fmt.Errorf("%w: %w", domain.ErrCompletion, err)
		}
		return "", err
	}
	span.End()
	return answer, nil
}

func (u *answerQuestionUsecase) fail(ctx context.Context, logger *slog.Logger, out *AnswerQuestionOutput, err error) (*AnswerQuestionOutput, error) {
	out.FailedStage = out.Stage
	out.Stage = StageFailed
	u.metrics.ObserveAnswer(StageFailed, len(out.IncludedTitles), out.ContextWords)
	logger.ErrorContext(ctx, "answer_failed",
		slog.String("stage", string(out.FailedStage)),
		slog.String("error", err.Error()),
	)
	return out, fmt.Errorf("%s: %w", out.FailedStage, err)
}

func endSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
