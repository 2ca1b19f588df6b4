package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sheetqa/internal/domain"
	"sheetqa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAnswerUsecase(t *testing.T, encoder *mockVectorEncoder, llm *mockLLMClient, metrics usecase.PipelineMetrics) usecase.AnswerQuestionUsecase {
	t.Helper()
	snapshot := newSnapshot(t, []domain.Document{
		{Title: "X", Body: "X is a thing."},
		{Title: "Y", Body: "Y is unrelated."},
	}, map[string][]float64{
		"X": {1, 0},
		"Y": {0, 1},
	})
	return usecase.NewAnswerQuestionUsecase(
		snapshot,
		usecase.NewRankDocumentsUsecase(encoder),
		usecase.NewPromptBuilder(usecase.DefaultPromptTemplate()),
		llm,
		usecase.AnswerConfig{WordBudget: 4, Completion: domain.DefaultCompletionOptions()},
		metrics,
		discardLogger(),
	)
}

func TestAnswerQuestion_Success(t *testing.T) {
	encoder := new(mockVectorEncoder)
	encoder.On("Encode", mock.Anything, "What is X?").Return([]float64{0.9, 0.1}, nil)

	llm := new(mockLLMClient)
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "\n*X is a thing.") &&
			!strings.Contains(prompt, "Y is unrelated.") &&
			strings.HasSuffix(prompt, "\n\n Q: What is X?\n A:")
	}), domain.DefaultCompletionOptions()).Return(" X is a thing.", nil)

	metrics := &recordingMetrics{}
	uc := newAnswerUsecase(t, encoder, llm, metrics)

	out, err := uc.Execute(context.Background(), usecase.AnswerQuestionInput{Question: "What is X?", RequestID: "req-1"})
	require.NoError(t, err)

	assert.Equal(t, " X is a thing.", out.Answer)
	assert.Equal(t, "req-1", out.RequestID)
	assert.Equal(t, usecase.StageAnswered, out.Stage)
	assert.Empty(t, out.FailedStage)
	assert.Equal(t, []string{"X"}, out.IncludedTitles)
	assert.Equal(t, 4, out.ContextWords)
	require.Len(t, out.Ranked, 2)
	assert.Equal(t, "X", out.Ranked[0].Title)
	assert.Equal(t, []usecase.Stage{usecase.StageAnswered}, metrics.answers)
	llm.AssertExpectations(t)
}

func TestAnswerQuestion_GeneratesRequestID(t *testing.T) {
	encoder := new(mockVectorEncoder)
	encoder.On("Encode", mock.Anything, "q").Return([]float64{1, 0}, nil)
	llm := new(mockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("a", nil)

	out, err := newAnswerUsecase(t, encoder, llm, nil).Execute(context.Background(), usecase.AnswerQuestionInput{Question: "q"})
	require.NoError(t, err)
	assert.Len(t, out.RequestID, 36)
}

func TestAnswerQuestion_Failures(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		setup     func(encoder *mockVectorEncoder, llm *mockLLMClient)
		wantStage usecase.Stage
		wantErr   error
	}{
		{
			name:     "embedding failure",
			question: "q",
			setup: func(encoder *mockVectorEncoder, llm *mockLLMClient) {
				encoder.On("Encode", mock.Anything, "q").Return(nil, domain.ErrEmbedding)
			},
			wantStage: usecase.StageRanking,
			wantErr:   domain.ErrEmbedding,
		},
		{
			name:     "completion failure",
			question: "q",
			setup: func(encoder *mockVectorEncoder, llm *mockLLMClient) {
				encoder.On("Encode", mock.Anything, "q").Return([]float64{1, 0}, nil)
				llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrCompletion)
			},
			wantStage: usecase.StageCompleting,
			wantErr:   domain.ErrCompletion,
		},
		{
			name:     "unclassified completion error",
			question: "q",
			setup: func(encoder *mockVectorEncoder, llm *mockLLMClient) {
				encoder.On("Encode", mock.Anything, "q").Return([]float64{1, 0}, nil)
				llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("context deadline exceeded"))
			},
			wantStage: usecase.StageCompleting,
			wantErr:   domain.ErrCompletion,
		},
		{
			name:      "blank question",
			question:  "   ",
			setup:     func(encoder *mockVectorEncoder, llm *mockLLMClient) {},
			wantStage: usecase.StageReceived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder := new(mockVectorEncoder)
			llm := new(mockLLMClient)
			tt.setup(encoder, llm)
			metrics := &recordingMetrics{}

			out, err := newAnswerUsecase(t, encoder, llm, metrics).Execute(context.Background(), usecase.AnswerQuestionInput{Question: tt.question})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NotNil(t, out)
			assert.Equal(t, usecase.StageFailed, out.Stage)
			assert.Equal(t, tt.wantStage, out.FailedStage)
			assert.Empty(t, out.Answer)
			assert.NotEmpty(t, out.RequestID)
			assert.Equal(t, []usecase.Stage{usecase.StageFailed}, metrics.answers)
		})
	}
}

func TestAnswerQuestion_BuildPromptSkipsCompletion(t *testing.T) {
	encoder := new(mockVectorEncoder)
	encoder.On("Encode", mock.Anything, "What is X?").Return([]float64{1, 0}, nil)
	llm := new(mockLLMClient)

	out, err := newAnswerUsecase(t, encoder, llm, nil).BuildPrompt(context.Background(), usecase.AnswerQuestionInput{Question: "What is X?"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Prompt, "\n\n Q: What is X?\n A:"))
	assert.Empty(t, out.Answer)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}
