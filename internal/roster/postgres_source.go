package roster

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresSource loads the roster from the participants and topics tables.
type PostgresSource struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresSource(dsn string) (*PostgresSource, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("roster dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresSource{db: db}, nil
}

// NewPostgresSourceFromDB uses an already opened database handle.
func NewPostgresSourceFromDB(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresSource) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS participants (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  avatar_ref TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  voice_ref TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS topics (
  topic TEXT PRIMARY KEY,
  position INTEGER NOT NULL DEFAULT 0
);
`)
	})
	return s.schemaErr
}

func (s *PostgresSource) Load(ctx context.Context) (*Roster, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure roster schema: %w", err)
	}
	participants, err := s.loadParticipants(ctx)
	if err != nil {
		return nil, err
	}
	topics, err := s.loadTopics(ctx)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 && len(topics) == 0 {
		// Fresh database: store the built-in roster so operators can edit it.
		if err := s.seed(ctx, Default()); err != nil {
			return nil, fmt.Errorf("seed roster: %w", err)
		}
		if participants, err = s.loadParticipants(ctx); err != nil {
			return nil, err
		}
		if topics, err = s.loadTopics(ctx); err != nil {
			return nil, err
		}
	}
	return New(participants, topics)
}

func (s *PostgresSource) seed(ctx context.Context, r *Roster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, p := range r.Participants() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO participants (id, display_name, avatar_ref, role, description, voice_ref, position)
VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
			p.ID, p.DisplayName, p.AvatarRef, p.Role, p.Description, p.VoiceRef, i); err != nil {
			return fmt.Errorf("insert participant %s: %w", p.ID, err)
		}
	}
	for i, t := range r.Topics() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO topics (topic, position) VALUES ($1, $2) ON CONFLICT (topic) DO NOTHING`, t, i); err != nil {
			return fmt.Errorf("insert topic %q: %w", t, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresSource) loadParticipants(ctx context.Context) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, display_name, avatar_ref, role, description, voice_ref
FROM participants ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarRef, &p.Role, &p.Description, &p.VoiceRef); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresSource) loadTopics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic FROM topics ORDER BY position, topic`)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
