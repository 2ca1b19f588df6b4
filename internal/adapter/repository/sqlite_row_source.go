package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sheetqa/internal/domain"

	_ "modernc.org/sqlite"
)

type sqliteRowSource struct {
	db    *sql.DB
	query string
}

// OpenSQLite opens a SQLite database file with the pure-Go driver.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}

// NewSQLiteRowSource creates a row source over an open SQLite database.
func NewSQLiteRowSource(db *sql.DB, table, orderColumn string) domain.RowSource {
	return &sqliteRowSource{
		db:    db,
		query: buildRowQuery(quoteSQLiteIdent(table), quoteSQLiteIdent(orderColumn)),
	}
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *sqliteRowSource) Rows(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var title, body sql.NullString
		if err := rows.Scan(&title, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, domain.Document{Title: title.String, Body: body.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (s *sqliteRowSource) Name() string {
	return "sqlite"
}
