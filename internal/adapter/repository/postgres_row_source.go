package repository

import (
	"context"
	"fmt"

	"sheetqa/internal/domain"

	"github.com/jackc/pgx/v5"
)

// PgxQuerier is the subset of pgxpool.Pool used by the row source.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresRowSource struct {
	pool  PgxQuerier
	query string
}

// NewPostgresRowSource creates a row source reading title and body columns from table,
// ordered by orderColumn so the load order is stable between restarts.
func NewPostgresRowSource(pool PgxQuerier, table, orderColumn string) domain.RowSource {
	return &postgresRowSource{
		pool:  pool,
		query: buildRowQuery(pgx.Identifier{table}.Sanitize(), pgx.Identifier{orderColumn}.Sanitize()),
	}
}

func buildRowQuery(table, orderColumn string) string {
	return fmt.Sprintf(`SELECT title, body FROM %s ORDER BY %s`, table, orderColumn)
}

func (s *postgresRowSource) Rows(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.Title, &doc.Body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (s *postgresRowSource) Name() string {
	return "postgres"
}
