package domain

import "fmt"

// Document is a titled body of text loaded from the tabular source.
type Document struct {
	Title string
	Body  string
}

// EmbeddingText is the text embedded for a document: title and body joined by a newline.
func (d Document) EmbeddingText() string {
	return d.Title + "\n" + d.Body
}

// DocumentEmbedding is the vector computed for the document with the same title.
type DocumentEmbedding struct {
	Title  string
	Vector []float64
}

// ScoredDocument pairs a document title with its similarity to a question.
type ScoredDocument struct {
	Title string
	Score float64
}

// DocumentSnapshot is the immutable set of documents and embeddings loaded at startup.
// It is safe for concurrent readers because nothing mutates it after construction.
type DocumentSnapshot struct {
	order      []string
	bodies     map[string]string
	embeddings map[string][]float64
}

// NewDocumentSnapshot builds a snapshot from parallel document and embedding lists.
// The two lists must cover exactly the same titles. Titles keep the order of docs.
func NewDocumentSnapshot(docs []Document, embeddings []DocumentEmbedding) (*DocumentSnapshot, error) {
	s := &DocumentSnapshot{
		order:      make([]string, 0, len(docs)),
		bodies:     make(map[string]string, len(docs)),
		embeddings: make(map[string][]float64, len(embeddings)),
	}
	for _, d := range docs {
		if _, dup := s.bodies[d.Title]; dup {
			return nil, fmt.Errorf("duplicate document title %q", d.Title)
		}
		s.order = append(s.order, d.Title)
		s.bodies[d.Title] = d.Body
	}
	for _, e := range embeddings {
		if _, ok := s.bodies[e.Title]; !ok {
			return nil, fmt.Errorf("embedding for unknown document %q", e.Title)
		}
		if _, dup := s.embeddings[e.Title]; dup {
			return nil, fmt.Errorf("duplicate embedding for %q", e.Title)
		}
		s.embeddings[e.Title] = e.Vector
	}
	if len(s.embeddings) != len(s.bodies) {
		return nil, fmt.Errorf("%d documents but %d embeddings", len(s.bodies), len(s.embeddings))
	}
	return s, nil
}

// Len returns the number of documents.
func (s *DocumentSnapshot) Len() int {
	return len(s.order)
}

// Body returns the body stored under title.
func (s *DocumentSnapshot) Body(title string) (string, bool) {
	body, ok := s.bodies[title]
	return body, ok
}

// Embeddings returns every embedding in load order.
func (s *DocumentSnapshot) Embeddings() []DocumentEmbedding {
	out := make([]DocumentEmbedding, 0, len(s.order))
	for _, title := range s.order {
		out = append(out, DocumentEmbedding{Title: title, Vector: s.embeddings[title]})
	}
	return out
}
