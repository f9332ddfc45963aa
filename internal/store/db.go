package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and runs schema
// migration.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT UNIQUE NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		lifecycle     TEXT NOT NULL DEFAULT 'active',
		last_login    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS courses (
		id            TEXT PRIMARY KEY,
		course_name   TEXT NOT NULL,
		course_code   TEXT UNIQUE NOT NULL,
		instructor_id TEXT NOT NULL REFERENCES users(id),
		lifecycle     TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS course_enrollments (
		id          TEXT PRIMARY KEY,
		course_id   TEXT NOT NULL REFERENCES courses(id),
		student_id  TEXT NOT NULL REFERENCES users(id),
		enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (course_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS class_sessions (
		id                TEXT PRIMARY KEY,
		course_id         TEXT NOT NULL REFERENCES courses(id),
		instructor_id     TEXT NOT NULL REFERENCES users(id),
		session_date      DATE NOT NULL,
		start_time        TEXT NOT NULL,
		end_time          TEXT NOT NULL,
		location_name     TEXT NOT NULL,
		latitude          DOUBLE PRECISION NOT NULL,
		longitude         DOUBLE PRECISION NOT NULL,
		attendance_radius INTEGER NOT NULL DEFAULT 50,
		lifecycle         TEXT NOT NULL DEFAULT 'active',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL REFERENCES class_sessions(id),
		student_id    TEXT NOT NULL REFERENCES users(id),
		check_in_time TIMESTAMPTZ NOT NULL,
		latitude      DOUBLE PRECISION NOT NULL,
		longitude     DOUBLE PRECISION NOT NULL,
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id           TEXT PRIMARY KEY,
		course_id    TEXT NOT NULL REFERENCES courses(id),
		student_id   TEXT REFERENCES users(id),
		rating       INTEGER NOT NULL,
		comment      TEXT NOT NULL DEFAULT '',
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_course     ON class_sessions(course_id);
	CREATE INDEX IF NOT EXISTS idx_records_session     ON attendance_records(session_id);
	CREATE INDEX IF NOT EXISTS idx_records_student     ON attendance_records(student_id);
	CREATE INDEX IF NOT EXISTS idx_enrollments_student ON course_enrollments(student_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_course     ON feedback(course_id);
	`
	_, err := db.Exec(schema)
	return err
}
