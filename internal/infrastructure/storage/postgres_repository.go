package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewswireScanner/internal/domain"
	"NewswireScanner/internal/ports"
)

// PostgresRepository persists finished article records. Each record gets its
// own transaction: a failed insert rolls back alone and never affects
// neighbouring records.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RecordRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRecord inserts one record in its own transaction.
func (r *PostgresRepository) SaveRecord(ctx context.Context, rec domain.Record) error {
	if r.db == nil {
		return nil
	}

	query, args, err := insertRecordSQL(r.builder, rec)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("insert record: %v (rollback: %w)", err, rbErr)
		}
		return fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}

	return nil
}

// SeenHeadlines returns a map with the headlines that already exist in storage.
func (r *PostgresRepository) SeenHeadlines(ctx context.Context, headlines []string) (map[string]bool, error) {
	if r.db == nil || len(headlines) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := seenHeadlinesSQL(r.builder, headlines)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen headlines: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var headline string
		if err := rows.Scan(&headline); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan headline: %w", err)
		}
		result[headline] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func insertRecordSQL(builder sq.StatementBuilderType, rec domain.Record) (string, []interface{}, error) {
	ticker := sql.NullString{}
	if rec.Ticker != nil {
		ticker = sql.NullString{String: *rec.Ticker, Valid: true}
	}

	return builder.Insert("articles").
		Columns("ticker", "headline", "published_at", "link", "article_text").
		Values(ticker, rec.Headline, rec.PublishedAt, rec.Link, rec.ArticleText).
		ToSql()
}

func seenHeadlinesSQL(builder sq.StatementBuilderType, headlines []string) (string, []interface{}, error) {
	return builder.Select("headline").
		From("articles").
		Where("headline = ANY(?)", pq.Array(headlines)).
		ToSql()
}
