package sqlmirror

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

//go:embed migrations/000001_create_votes.up.sql
var postgresSchema string

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS votes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    student_id TEXT NOT NULL UNIQUE,
    student_name TEXT NOT NULL,
    grade TEXT NOT NULL,
    room TEXT NOT NULL,
    book_cover TEXT NOT NULL,
    cast_at TEXT NOT NULL
);
`

type voteMirror struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn and makes sure the votes table exists.
func Open(ctx context.Context, dialect Dialect, dsn string) (ports.VoteMirror, *sql.DB, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent appends
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach %s: %w", dialect, err)
	}

	m, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, db, nil
}

func New(ctx context.Context, db *sql.DB, dialect Dialect) (ports.VoteMirror, error) {
	m := &voteMirror{db: db, dialect: dialect}
	if err := m.createSchema(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *voteMirror) Name() string { return string(m.dialect) }

func (m *voteMirror) createSchema(ctx context.Context) error {
	schema := postgresSchema
	if m.dialect == SQLite {
		schema = sqliteSchema
	}
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append inserts vote. A row for the same student already present is left as is.
func (m *voteMirror) Append(ctx context.Context, vote domain.Vote) error {
	query := `
		INSERT INTO votes (id, student_id, student_name, grade, room, book_cover, cast_at)
		VALUES (` + m.placeholders(7) + `)
		ON CONFLICT (student_id) DO NOTHING
	`
	_, err := m.db.ExecContext(ctx, query,
		vote.ID.String(),
		vote.StudentID,
		vote.StudentName,
		vote.Grade,
		vote.Room,
		vote.SelectedOption,
		vote.CastAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (m *voteMirror) LoadAll(ctx context.Context) ([]domain.Vote, error) {
	query := `
		SELECT id, student_id, student_name, grade, room, book_cover, cast_at
		FROM votes
		ORDER BY seq
	`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var (
			v      domain.Vote
			id     string
			castAt string
		)
		if err := rows.Scan(&id, &v.StudentID, &v.StudentName, &v.Grade, &v.Room, &v.SelectedOption, &castAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if v.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid vote id %q: %w", id, err)
		}
		if v.CastAt, err = time.Parse(time.RFC3339Nano, castAt); err != nil {
			return nil, fmt.Errorf("invalid cast_at for student %s: %w", v.StudentID, err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (m *voteMirror) placeholders(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		if m.dialect == Postgres {
			out += fmt.Sprintf("$%d", i)
		} else {
			out += "?"
		}
	}
	return out
}
