package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/nlsql/engine"
	"github.com/viant/nlsql/metadata"
	"github.com/viant/nlsql/vector"
)

const tablesDDL = `CREATE TABLE IF NOT EXISTS tables (
    id             TEXT PRIMARY KEY,
    ord            INTEGER NOT NULL,
    position       INTEGER,
    name           TEXT NOT NULL,
    summary        TEXT,
    columns        TEXT,
    embedding_text TEXT,
    raw            TEXT,
    embedding      BLOB
);
CREATE UNIQUE INDEX IF NOT EXISTS tables_position ON tables(position) WHERE position IS NOT NULL;`

// recordDB is the SQLite full-record store of one generation.
type recordDB struct {
	db *sql.DB
}

func openRecordDB(path string) (*recordDB, error) {
	db, err := engine.Open(path)
	if err != nil {
		return nil, err
	}
	return &recordDB{db: db}, nil
}

func (r *recordDB) Close() error { return r.db.Close() }

// EnsureSchema creates the tables table if it does not exist.
func (r *recordDB) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, tablesDDL); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// indexedRecord is a record with its index position, -1 when unindexed.
type indexedRecord struct {
	metadata.TableRecord
	position int
}

// Insert writes records in one transaction; ord keeps the input order.
func (r *recordDB) Insert(ctx context.Context, records []indexedRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tables(id, ord, position, name, summary, columns, embedding_text, raw, embedding)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		var position any
		if rec.position >= 0 {
			position = rec.position
		}
		columns, err := json.Marshal(rec.Columns)
		if err != nil {
			return fmt.Errorf("store: encode columns of %q: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, i, position, rec.Name, rec.Summary, string(columns),
			rec.EmbeddingText, rec.Raw, vector.EncodeEmbedding(rec.Embedding)); err != nil {
			return fmt.Errorf("store: insert %q: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

const selectRecord = `SELECT id, position, name, summary, columns, embedding_text, raw, embedding FROM tables`

// All returns every record in input order.
func (r *recordDB) All(ctx context.Context) ([]indexedRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord+` ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByID returns the records with the given ids keyed by id.
func (r *recordDB) ByID(ctx context.Context, ids []string) (map[string]indexedRecord, error) {
	out := make(map[string]indexedRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := selectRecord + ` WHERE id IN (?` + strings.Repeat(`, ?`, len(ids)-1) + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.ID] = rec
	}
	return out, nil
}

// Count returns the number of stored and of indexed records.
func (r *recordDB) Count(ctx context.Context) (total, indexed int, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(position) FROM tables`).Scan(&total, &indexed)
	return total, indexed, err
}

// Distance returns the stored position of id and the vec_l2sq distance
// between its stored embedding and vec.
func (r *recordDB) Distance(ctx context.Context, id string, vec []float32) (position sql.NullInt64, distance sql.NullFloat64, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT position, vec_l2sq(embedding, ?) FROM tables WHERE id = ?`,
		vector.EncodeEmbedding(vec), id).Scan(&position, &distance)
	return position, distance, err
}

func scanRecords(rows *sql.Rows) ([]indexedRecord, error) {
	var out []indexedRecord
	for rows.Next() {
		var rec indexedRecord
		var position sql.NullInt64
		var summary, columns, text, raw sql.NullString
		var embedding []byte
		if err := rows.Scan(&rec.ID, &position, &rec.Name, &summary, &columns, &text, &raw, &embedding); err != nil {
			return nil, err
		}
		rec.position = -1
		if position.Valid {
			rec.position = int(position.Int64)
		}
		rec.Summary, rec.EmbeddingText, rec.Raw = summary.String, text.String, raw.String
		if columns.Valid && columns.String != "" && columns.String != "null" {
			if err := json.Unmarshal([]byte(columns.String), &rec.Columns); err != nil {
				return nil, fmt.Errorf("store: decode columns of %q: %w", rec.ID, err)
			}
		}
		vec, err := vector.DecodeEmbedding(embedding)
		if err != nil {
			return nil, fmt.Errorf("store: decode embedding of %q: %w", rec.ID, err)
		}
		rec.Embedding = vec
		out = append(out, rec)
	}
	return out, rows.Err()
}
