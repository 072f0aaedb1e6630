package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"bulkscan-adjudicator/internal/domain"
)

// PostgresStore keeps an audit trail of verdicts and transformation outcomes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) RecordValidation(ctx context.Context, rec domain.ValidationAudit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ocr_validations (id, form_type, status, errors, warnings, service, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.FormType, rec.Status, pq.Array(rec.Errors), pq.Array(rec.Warnings), rec.Service, rec.CreatedAt)
	return err
}

func (s *PostgresStore) RecordTransformation(ctx context.Context, rec domain.TransformationAudit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transformations (id, exception_record_id, result, errors, warnings, service, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.ExceptionRecordID, rec.Result, pq.Array(rec.Errors), pq.Array(rec.Warnings), rec.Service, rec.CreatedAt)
	return err
}

// ListTransformations returns the audit rows for one exception record, newest first.
func (s *PostgresStore) ListTransformations(ctx context.Context, exceptionRecordID string, limit int) ([]domain.TransformationAudit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, exception_record_id, result, errors, warnings, service, created_at
		FROM transformations
		WHERE exception_record_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, exceptionRecordID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transformations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.TransformationAudit, 0)
	for rows.Next() {
		var item domain.TransformationAudit
		var errs, warnings []string
		if err := rows.Scan(
			&item.ID,
			&item.ExceptionRecordID,
			&item.Result,
			pq.Array(&errs),
			pq.Array(&warnings),
			&item.Service,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Errors = nonNil(errs)
		item.Warnings = nonNil(warnings)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
