package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:denemehub.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/denemehub?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS roles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  is_system INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash TEXT NOT NULL UNIQUE,
  expires_at INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  revoked_at INTEGER,
  revoked_reason TEXT,
  replaced_by TEXT,
  user_agent TEXT,
  ip_address TEXT
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id);

CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS exam_types (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  lesson_id TEXT NOT NULL REFERENCES lessons(id),
  exam_type_id TEXT NOT NULL REFERENCES exam_types(id),
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS test_books (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  lesson_id TEXT NOT NULL REFERENCES lessons(id),
  exam_type_id TEXT NOT NULL REFERENCES exam_types(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  published_year INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS test_book_subjects (
  test_book_id TEXT NOT NULL REFERENCES test_books(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  PRIMARY KEY (test_book_id, subject_id)
);

CREATE TABLE IF NOT EXISTS practice_tests (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  test_number INTEGER NOT NULL,
  question_count INTEGER NOT NULL,
  answer_key TEXT NOT NULL,
  test_book_id TEXT NOT NULL REFERENCES test_books(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_practice_tests_book ON practice_tests(test_book_id);

CREATE TABLE IF NOT EXISTS test_results (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  practice_test_id TEXT NOT NULL REFERENCES practice_tests(id) ON DELETE CASCADE,
  user_answers TEXT NOT NULL,
  correct_count INTEGER NOT NULL,
  wrong_count INTEGER NOT NULL,
  empty_count INTEGER NOT NULL,
  net_score REAL NOT NULL,
  solved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_results_user ON test_results(user_id, practice_test_id, solved_at);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  deleted_at BIGINT
);

CREATE TABLE IF NOT EXISTS roles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  is_system INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash TEXT NOT NULL UNIQUE,
  expires_at BIGINT NOT NULL,
  created_at BIGINT NOT NULL,
  revoked_at BIGINT,
  revoked_reason TEXT,
  replaced_by TEXT,
  user_agent TEXT,
  ip_address TEXT
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id);

CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS exam_types (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  lesson_id TEXT NOT NULL REFERENCES lessons(id),
  exam_type_id TEXT NOT NULL REFERENCES exam_types(id),
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS test_books (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  lesson_id TEXT NOT NULL REFERENCES lessons(id),
  exam_type_id TEXT NOT NULL REFERENCES exam_types(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  published_year INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS test_book_subjects (
  test_book_id TEXT NOT NULL REFERENCES test_books(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  PRIMARY KEY (test_book_id, subject_id)
);

CREATE TABLE IF NOT EXISTS practice_tests (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  test_number INTEGER NOT NULL,
  question_count INTEGER NOT NULL,
  answer_key TEXT NOT NULL,
  test_book_id TEXT NOT NULL REFERENCES test_books(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_practice_tests_book ON practice_tests(test_book_id);

CREATE TABLE IF NOT EXISTS test_results (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  practice_test_id TEXT NOT NULL REFERENCES practice_tests(id) ON DELETE CASCADE,
  user_answers TEXT NOT NULL,
  correct_count INTEGER NOT NULL,
  wrong_count INTEGER NOT NULL,
  empty_count INTEGER NOT NULL,
  net_score DOUBLE PRECISION NOT NULL,
  solved_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_results_user ON test_results(user_id, practice_test_id, solved_at);
`
