package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"passport-admin-go/internal/domain/record"

	"github.com/lib/pq"
)

// PostgresStore reads the same tables directly from PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	tables record.Tables
}

// OpenPostgres opens and pings a database handle for dsn.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB, tables record.Tables) *PostgresStore {
	return &PostgresStore{db: db, tables: tables}
}

// List selects whole rows as JSON so columns map onto Record exactly as they
// do for the REST backend.
func (s *PostgresStore) List(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	query := fmt.Sprintf(
		`SELECT row_to_json(t) FROM %s t ORDER BY t.%s DESC`,
		pq.QuoteIdentifier(s.tables.Name(kind)),
		pq.QuoteIdentifier(kind.OrderColumn()),
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		var rec record.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", kind, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, kind record.Kind, id record.ID, patch record.Patch) error {
	query := fmt.Sprintf(
		`UPDATE %s SET status = $1, updated_at = $2 WHERE id::text = $3`,
		pq.QuoteIdentifier(s.tables.Name(kind)),
	)

	res, err := s.db.ExecContext(ctx, query, string(patch.Status), patch.UpdatedAt.UTC(), string(id))
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrRecordNotFound)
	}
	return nil
}
