package domain

import "context"

// RowSource reads (title, body) rows from an external tabular source.
// Header rows are already skipped by the implementation.
type RowSource interface {
	Rows(ctx context.Context) ([]Document, error)
	Name() string
}
