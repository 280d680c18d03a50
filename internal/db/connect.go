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

// Open opens a DB and ensures the campaign schema exists. The sqlite DSN
// defaults to immediate transactions so every read-modify-write of day
// status takes the writer lock up front.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:prepforge.db?cache=shared&mode=rwc&_txlock=immediate&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/prepforge?sslmode=disable"
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
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  prompt TEXT NOT NULL,
  options_json TEXT NOT NULL,
  correct_option TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  total_days INTEGER NOT NULL,
  questions_per_day INTEGER NOT NULL,
  current_day INTEGER NOT NULL DEFAULT 1,
  questions_answered INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  overall_score REAL NOT NULL DEFAULT 0,
  started_at INTEGER NOT NULL,
  completed_at INTEGER,
  created_at INTEGER NOT NULL
);

-- One live exam per user, enforced at the storage layer so two
-- concurrent creations cannot both succeed.
CREATE UNIQUE INDEX IF NOT EXISTS exams_one_live_per_user
  ON exams(user_id) WHERE status IN ('not_started','in_progress','paused');

CREATE TABLE IF NOT EXISTS exam_days (
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  day_number INTEGER NOT NULL,
  subject_id TEXT NOT NULL,
  status TEXT NOT NULL,
  session_id TEXT,
  started_at INTEGER,
  completed_at INTEGER,
  question_count INTEGER NOT NULL DEFAULT 0,
  correct_count INTEGER NOT NULL DEFAULT 0,
  score REAL NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (exam_id, day_number)
);

CREATE TABLE IF NOT EXISTS exam_sessions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  question_count INTEGER NOT NULL,
  started_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_answers (
  session_id TEXT NOT NULL REFERENCES exam_sessions(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  selected_option TEXT,
  is_correct INTEGER,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (session_id, question_id)
);

CREATE TABLE IF NOT EXISTS subject_results (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL,
  day_number INTEGER NOT NULL,
  question_count INTEGER NOT NULL,
  answered_count INTEGER NOT NULL,
  correct_count INTEGER NOT NULL,
  score REAL NOT NULL,
  grade TEXT NOT NULL,
  time_taken_sec INTEGER NOT NULL DEFAULT 0,
  answers_json TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE (exam_id, day_number)
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                          -- e.g. day_missed
  key TEXT NOT NULL,                          -- natural key: examID
  data TEXT NOT NULL,                         -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  prompt TEXT NOT NULL,
  options_json TEXT NOT NULL,
  correct_option TEXT NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  status TEXT NOT NULL,
  total_days INTEGER NOT NULL,
  questions_per_day INTEGER NOT NULL,
  current_day INTEGER NOT NULL DEFAULT 1,
  questions_answered INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  overall_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  started_at BIGINT NOT NULL,
  completed_at BIGINT,
  created_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS exams_one_live_per_user
  ON exams(user_id) WHERE status IN ('not_started','in_progress','paused');

CREATE TABLE IF NOT EXISTS exam_days (
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  day_number INTEGER NOT NULL,
  subject_id TEXT NOT NULL,
  status TEXT NOT NULL,
  session_id TEXT,
  started_at BIGINT,
  completed_at BIGINT,
  question_count INTEGER NOT NULL DEFAULT 0,
  correct_count INTEGER NOT NULL DEFAULT 0,
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (exam_id, day_number)
);

CREATE TABLE IF NOT EXISTS exam_sessions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  question_count INTEGER NOT NULL,
  started_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_answers (
  session_id TEXT NOT NULL REFERENCES exam_sessions(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  selected_option TEXT,
  is_correct BOOLEAN,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (session_id, question_id)
);

CREATE TABLE IF NOT EXISTS subject_results (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL,
  day_number INTEGER NOT NULL,
  question_count INTEGER NOT NULL,
  answered_count INTEGER NOT NULL,
  correct_count INTEGER NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  grade TEXT NOT NULL,
  time_taken_sec INTEGER NOT NULL DEFAULT 0,
  answers_json TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  UNIQUE (exam_id, day_number)
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
