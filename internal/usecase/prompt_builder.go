package usecase

import (
	"fmt"
	"strings"

	"sheetqa/internal/domain"
)

// DefaultWordBudget caps the words of context packed into a prompt.
const DefaultWordBudget = 1125

// BuiltPrompt is the rendered prompt plus what went into its context section.
type BuiltPrompt struct {
	Prompt         string
	IncludedTitles []string
	ContextWords   int
}

// PromptBuilder packs ranked documents into a completion prompt.
type PromptBuilder interface {
	Build(question string, snapshot *domain.DocumentSnapshot, ranked []domain.ScoredDocument, wordBudget int) (*BuiltPrompt, error)
}

type contextPromptBuilder struct {
	template PromptTemplate
}

// NewPromptBuilder creates a builder rendering prompts with template.
func NewPromptBuilder(template PromptTemplate) PromptBuilder {
	return &contextPromptBuilder{template: template}
}

// Build walks ranked in order and appends each body until the running word
// count first exceeds wordBudget. Packing stops there: later documents are not
// considered even if they would fit.
func (b *contextPromptBuilder) Build(question string, snapshot *domain.DocumentSnapshot, ranked []domain.ScoredDocument, wordBudget int) (*BuiltPrompt, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("document snapshot is not loaded")
	}
	if wordBudget <= 0 {
		wordBudget = DefaultWordBudget
	}

	var sb strings.Builder
	included := make([]string, 0, len(ranked))
	total := 0
	for _, doc := range ranked {
		body, ok := snapshot.Body(doc.Title)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrMissingDocument, doc.Title)
		}
		words := domain.CountWords(body)
		if total+words > wordBudget {
			break
		}
		total += words
		sb.WriteString("\n*")
		sb.WriteString(body)
		included = append(included, doc.Title)
	}

	return &BuiltPrompt{
		Prompt:         b.template.Render(sb.String(), question),
		IncludedTitles: included,
		ContextWords:   total,
	}, nil
}
