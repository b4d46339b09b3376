package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Dialect names a supported SQL backend
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"

	pgUniqueViolation = "23505"
)

// driverName returns the database/sql driver registered for d
func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite3", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported SQL dialect %q", string(d))
	}
}

// SQLStore implements service.RoverStore on top of database/sql
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens dsn with the dialect's driver and runs migrations
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing handle and migrates it
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := dialect.driverName(); err != nil {
		return nil, err
	}
	if err := migrate(ctx, db, dialect); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewGooseLoggerFromCtx(ctx))

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// Close releases the underlying database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Find loads a rover by id
func (s *SQLStore) Find(ctx context.Context, id int) (*engine.Rover, error) {
	query := s.rebind(`SELECT id, name, x, y, heading FROM rovers WHERE id = ?`)

	rover, err := scanRover(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrRoverNotFound
		}
		return nil, fmt.Errorf("failed to query rover %d: %w", id, err)
	}
	return rover, nil
}

// Insert adds a new rover, relying on the primary key to reject duplicates
func (s *SQLStore) Insert(ctx context.Context, rover *engine.Rover) error {
	if rover == nil {
		return fmt.Errorf("rover cannot be nil")
	}

	query := s.rebind(`INSERT INTO rovers (id, name, x, y, heading) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, rover.ID, rover.Name, rover.Position.X, rover.Position.Y, rover.Heading.String())
	if err != nil {
		if isDuplicateKey(err) {
			return service.ErrRoverExists
		}
		return fmt.Errorf("failed to insert rover %d: %w", rover.ID, err)
	}
	return nil
}

// Update overwrites name, position and heading
func (s *SQLStore) Update(ctx context.Context, rover *engine.Rover) error {
	if rover == nil {
		return fmt.Errorf("rover cannot be nil")
	}

	query := s.rebind(`UPDATE rovers SET name = ?, x = ?, y = ?, heading = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, rover.Name, rover.Position.X, rover.Position.Y, rover.Heading.String(), rover.ID)
	if err != nil {
		return fmt.Errorf("failed to update rover %d: %w", rover.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return service.ErrRoverNotFound
	}
	return nil
}

// List returns all rovers ordered by id
func (s *SQLStore) List(ctx context.Context) ([]*engine.Rover, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, x, y, heading FROM rovers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rovers: %w", err)
	}
	defer rows.Close()

	var rovers []*engine.Rover
	for rows.Next() {
		rover, err := scanRover(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rover: %w", err)
		}
		rovers = append(rovers, rover)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rovers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRover(row rowScanner) (*engine.Rover, error) {
	var (
		rover   engine.Rover
		heading string
	)
	if err := row.Scan(&rover.ID, &rover.Name, &rover.Position.X, &rover.Position.Y, &heading); err != nil {
		return nil, err
	}

	h, err := engine.ParseHeading(heading)
	if err != nil {
		return nil, fmt.Errorf("rover %d: %w", rover.ID, err)
	}
	rover.Heading = h

	return &rover, nil
}

// rebind rewrites ? placeholders to $n for Postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}

var _ service.RoverStore = (*SQLStore)(nil)
