package rag_http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sheetqa/internal/adapter/rag_http"
	"sheetqa/internal/domain"
	"sheetqa/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerUsecase struct {
	answer string
	err    error
	calls  []usecase.AnswerQuestionInput
}

func (s *stubAnswerUsecase) Execute(ctx context.Context, input usecase.AnswerQuestionInput) (*usecase.AnswerQuestionOutput, error) {
	s.calls = append(s.calls, input)
	out := &usecase.AnswerQuestionOutput{RequestID: input.RequestID, Answer: s.answer, Stage: usecase.StageAnswered}
	if s.err != nil {
		out.Answer = ""
		out.Stage = usecase.StageFailed
		return out, s.err
	}
	return out, nil
}

func (s *stubAnswerUsecase) BuildPrompt(ctx context.Context, input usecase.AnswerQuestionInput) (*usecase.AnswerQuestionOutput, error) {
	return nil, errors.New("not used")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSnapshot(t *testing.T) *domain.DocumentSnapshot {
	t.Helper()
	snapshot, err := domain.NewDocumentSnapshot(
		[]domain.Document{{Title: "X", Body: "X is a thing."}},
		[]domain.DocumentEmbedding{{Title: "X", Vector: []float64{1}}},
	)
	require.NoError(t, err)
	return snapshot
}

func newTestRouter(t *testing.T, uc usecase.AnswerQuestionUsecase, snapshot *domain.DocumentSnapshot, strict bool) *echo.Echo {
	t.Helper()
	doc, err := rag_http.LoadOpenAPI(context.Background())
	require.NoError(t, err)
	handler := rag_http.NewHandler(uc, snapshot, strict, discardLogger())
	return rag_http.NewRouter(handler, doc, rag_http.RouterConfig{ServiceName: "sheetqa-test", Logger: discardLogger()})
}

func postAnswer(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generateAnswer", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGenerateAnswer_Success(t *testing.T) {
	uc := &stubAnswerUsecase{answer: " X is a thing."}
	e := newTestRouter(t, uc, testSnapshot(t), false)

	rec := postAnswer(e, `{"question":"What is X?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " X is a thing.", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
	require.Len(t, uc.calls, 1)
	assert.Equal(t, "What is X?", uc.calls[0].Question)
	assert.NotEmpty(t, uc.calls[0].RequestID)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), uc.calls[0].RequestID)
}

func TestGenerateAnswer_FailureIsEmptyOK(t *testing.T) {
	for _, err := range []error{domain.ErrEmbedding, domain.ErrCompletion, domain.ErrMissingDocument, errors.New("other")} {
		t.Run(err.Error(), func(t *testing.T) {
			e := newTestRouter(t, &stubAnswerUsecase{err: err}, testSnapshot(t), false)

			rec := postAnswer(e, `{"question":"What is X?"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestGenerateAnswer_StrictErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: domain.ErrEmbedding, status: http.StatusBadGateway},
		{err: domain.ErrCompletion, status: http.StatusBadGateway},
		{err: domain.ErrMissingDocument, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := newTestRouter(t, &stubAnswerUsecase{err: tt.err}, testSnapshot(t), true)

			rec := postAnswer(e, `{"question":"What is X?"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}

	t.Run("success is unchanged", func(t *testing.T) {
		e := newTestRouter(t, &stubAnswerUsecase{answer: "yes"}, testSnapshot(t), true)
		rec := postAnswer(e, `{"question":"q"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "yes", rec.Body.String())
	})
}

func TestGenerateAnswer_InvalidBody(t *testing.T) {
	bodies := map[string]string{
		"missing question": `{}`,
		"non-string":       `{"question":42}`,
		"null question":    `{"question":null}`,
		"malformed json":   `{"question":`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			uc := &stubAnswerUsecase{answer: "unused"}
			e := newTestRouter(t, uc, testSnapshot(t), false)

			rec := postAnswer(e, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			assert.Empty(t, uc.calls)
		})
	}
}

func TestGenerateAnswer_BlankQuestionLooksLikeAnyFailure(t *testing.T) {
	for name, body := range map[string]string{
		"empty":      `{"question":""}`,
		"whitespace": `{"question":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			uc := &stubAnswerUsecase{err: errors.New("received: question is required")}
			e := newTestRouter(t, uc, testSnapshot(t), false)

			rec := postAnswer(e, body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			require.Len(t, uc.calls, 1)
		})
	}
}

func TestHealthAndReadiness(t *testing.T) {
	e := newTestRouter(t, &stubAnswerUsecase{}, testSnapshot(t), false)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","documents":1}`, rec.Body.String())

	notReady := newTestRouter(t, &stubAnswerUsecase{}, nil, false)
	rec = httptest.NewRecorder()
	notReady.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenAPIAndMetricsRoutes(t *testing.T) {
	e := newTestRouter(t, &stubAnswerUsecase{}, testSnapshot(t), false)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/generateAnswer")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnswerClient_Ask(t *testing.T) {
	uc := &stubAnswerUsecase{answer: "forty-two"}
	server := httptest.NewServer(newTestRouter(t, uc, testSnapshot(t), false))
	defer server.Close()

	client := rag_http.NewAnswerClient(server.URL+"/", 5*time.Second)

	answer, err := client.Ask(context.Background(), "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "forty-two", answer)

	failing := httptest.NewServer(newTestRouter(t, &stubAnswerUsecase{err: domain.ErrCompletion}, testSnapshot(t), true))
	defer failing.Close()

	_, err = rag_http.NewAnswerClient(failing.URL, 5*time.Second).Ask(context.Background(), "What is the answer?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
