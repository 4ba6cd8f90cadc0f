package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // register mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/rs/zerolog"

	"github.com/viant/nlsql/engine"
	"github.com/viant/nlsql/metadata"
)

// Dialect names a supported database.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ErrTableNotFound is returned by Describe for an unknown table.
var ErrTableNotFound = errors.New("schema: table not found")

// ParseDialect validates s.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case MySQL, Postgres, SQLite:
		return d, nil
	case "postgresql", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("schema: unsupported database driver %q", s)
}

// Introspector reads table definitions from a live database.
type Introspector struct {
	db      *sql.DB
	dialect Dialect
	owned   bool
	logger  zerolog.Logger
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger used to report skipped tables.
func WithLogger(l zerolog.Logger) Option {
	return func(i *Introspector) { i.logger = l }
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Introspector {
	i := &Introspector{db: db, dialect: dialect, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Open connects to dsn with the driver for dialect and checks the
// connection.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*Introspector, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case MySQL:
		db, err = sql.Open("mysql", dsn)
	case Postgres:
		db, err = sql.Open("pgx", dsn)
	case SQLite:
		db, err = engine.Open(dsn)
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: connect %s: %w", dialect, err)
	}
	i := New(db, dialect, opts...)
	i.owned = true
	return i, nil
}

// Close closes the database when it was opened by Open.
func (i *Introspector) Close() error {
	if i.owned {
		return i.db.Close()
	}
	return nil
}

// Dialect returns the database dialect.
func (i *Introspector) Dialect() Dialect { return i.dialect }

// Tables lists base tables in name order.
func (i *Introspector) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch i.dialect {
	case MySQL:
		query = `SHOW TABLES`
	case Postgres:
		query = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`
	case SQLite:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", i.dialect)
	}
	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Describe returns the columns of table in declaration order.
func (i *Introspector) Describe(ctx context.Context, table string) (Table, error) {
	var (
		columns []metadata.Column
		err     error
	)
	switch i.dialect {
	case MySQL:
		columns, err = i.describeMySQL(ctx, table)
	case Postgres:
		columns, err = i.describePostgres(ctx, table)
	case SQLite:
		columns, err = i.describeSQLite(ctx, table)
	default:
		err = fmt.Errorf("schema: unsupported dialect %q", i.dialect)
	}
	if err != nil {
		return Table{}, fmt.Errorf("schema: describe %s: %w", table, err)
	}
	if len(columns) == 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return Table{Name: table, Columns: columns}, nil
}

// Snapshot describes every table. A table that cannot be described is
// logged and skipped.
func (i *Introspector) Snapshot(ctx context.Context) ([]Table, error) {
	names, err := i.Tables(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := i.Describe(ctx, name)
		if err != nil {
			i.logger.Warn().Err(err).Str("table", name).Msg("skipping table")
			continue
		}
		tables = append(tables, table)
	}
	i.logger.Info().Str("dialect", string(i.dialect)).Int("tables", len(tables)).Msg("introspected schema")
	return tables, nil
}

func (i *Introspector) describeMySQL(ctx context.Context, table string) ([]metadata.Column, error) {
	rows, err := i.db.QueryContext(ctx, "DESCRIBE "+quoteMySQL(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var columns []metadata.Column
	for rows.Next() {
		var field, typ, null, key string
		var def, extra sql.NullString
		if err := rows.Scan(&field, &typ, &null, &key, &def, &extra); err != nil {
			return nil, err
		}
		columns = append(columns, metadata.Column{
			Name:     field,
			Type:     typ,
			Nullable: strings.EqualFold(null, "YES"),
			Key:      key,
		})
	}
	return columns, rows.Err()
}

const postgresColumns = `SELECT c.column_name, c.data_type, c.is_nullable, COALESCE(k.constraint_type, '')
FROM information_schema.columns c
LEFT JOIN (
    SELECT kcu.column_name, tc.constraint_type
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON tc.constraint_name = kcu.constraint_name
     AND tc.table_schema = kcu.table_schema
     AND tc.table_name = kcu.table_name
    WHERE tc.table_schema = current_schema() AND tc.table_name = $1
) k ON k.column_name = c.column_name
WHERE c.table_schema = current_schema() AND c.table_name = $1
ORDER BY c.ordinal_position`

func (i *Introspector) describePostgres(ctx context.Context, table string) ([]metadata.Column, error) {
	rows, err := i.db.QueryContext(ctx, postgresColumns, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var columns []metadata.Column
	seen := map[string]int{}
	for rows.Next() {
		var name, typ, nullable, constraint string
		if err := rows.Scan(&name, &typ, &nullable, &constraint); err != nil {
			return nil, err
		}
		key := postgresKey(constraint)
		if pos, ok := seen[name]; ok {
			if columns[pos].Key == "" || key == "PRI" {
				columns[pos].Key = key
			}
			continue
		}
		seen[name] = len(columns)
		columns = append(columns, metadata.Column{
			Name:     name,
			Type:     typ,
			Nullable: strings.EqualFold(nullable, "YES"),
			Key:      key,
		})
	}
	return columns, rows.Err()
}

func postgresKey(constraint string) string {
	switch constraint {
	case "PRIMARY KEY":
		return "PRI"
	case "UNIQUE":
		return "UNI"
	case "FOREIGN KEY":
		return "MUL"
	}
	return ""
}

func (i *Introspector) describeSQLite(ctx context.Context, table string) ([]metadata.Column, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quoteSQL(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var columns []metadata.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			def              sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &def, &pk); err != nil {
			return nil, err
		}
		col := metadata.Column{Name: name, Type: typ, Nullable: notNull == 0 && pk == 0}
		if pk > 0 {
			col.Key = "PRI"
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func quoteSQL(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
