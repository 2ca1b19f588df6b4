package usecase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultPreamble = `Answer the question as truthfully as possible using the provided context, and if the answer is not contained within the text below, say "I don't know."` + "\n"

// PromptTemplate holds the fixed text surrounding the context and question.
type PromptTemplate struct {
	Preamble       string `yaml:"preamble"`
	ContextHeader  string `yaml:"context_header"`
	QuestionPrefix string `yaml:"question_prefix"`
	AnswerPrefix   string `yaml:"answer_prefix"`
}

// DefaultPromptTemplate returns the built-in instruction template.
func DefaultPromptTemplate() PromptTemplate {
	return PromptTemplate{
		Preamble:       defaultPreamble,
		ContextHeader:  "\nContext:\n",
		QuestionPrefix: "\n\n Q: ",
		AnswerPrefix:   "\n A:",
	}
}

// Render assembles preamble, context and question into the final prompt.
func (t PromptTemplate) Render(context, question string) string {
	return t.Preamble + t.ContextHeader + context + t.QuestionPrefix + question + t.AnswerPrefix
}

// LoadPromptTemplate reads a YAML file whose keys override the default template.
// Keys missing from the file keep their default text.
func LoadPromptTemplate(path string) (PromptTemplate, error) {
	tmpl := DefaultPromptTemplate()
	if path == "" {
		return tmpl, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tmpl, fmt.Errorf("failed to read prompt template: %w", err)
	}
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return tmpl, fmt.Errorf("failed to parse prompt template %s: %w", path, err)
	}
	return tmpl, nil
}
