package roster

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"symposium/internal/tester"
)

// memTables is a tiny database/sql driver that understands the statements
// PostgresSource issues.
type memTables struct {
	mu           sync.Mutex
	participants [][]driver.Value
	topics       [][]driver.Value
	inserts      int
}

func (m *memTables) Connect(context.Context) (driver.Conn, error) { return memConn{m}, nil }
func (m *memTables) Driver() driver.Driver                        { return nil }

type memConn struct{ m *memTables }

func (c memConn) Prepare(query string) (driver.Stmt, error) { return memStmt{m: c.m, query: query}, nil }
func (c memConn) Close() error                              { return nil }
func (c memConn) Begin() (driver.Tx, error)                 { return memTx{}, nil }

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

type memStmt struct {
	m     *memTables
	query string
}

func (s memStmt) Close() error  { return nil }
func (s memStmt) NumInput() int { return -1 }

func (s memStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	q := strings.TrimSpace(s.query)
	switch {
	case strings.HasPrefix(q, "CREATE TABLE"):
	case strings.HasPrefix(q, "INSERT INTO participants"):
		s.m.participants = append(s.m.participants, args[:6])
		s.m.inserts++
	case strings.HasPrefix(q, "INSERT INTO topics"):
		s.m.topics = append(s.m.topics, args[:1])
		s.m.inserts++
	default:
		return nil, errors.New("unexpected exec: " + q)
	}
	return driver.RowsAffected(1), nil
}

func (s memStmt) Query([]driver.Value) (driver.Rows, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	q := strings.TrimSpace(s.query)
	switch {
	case strings.Contains(q, "FROM participants"):
		return &memRows{cols: []string{"id", "display_name", "avatar_ref", "role", "description", "voice_ref"}, rows: append([][]driver.Value(nil), s.m.participants...)}, nil
	case strings.Contains(q, "FROM topics"):
		return &memRows{cols: []string{"topic"}, rows: append([][]driver.Value(nil), s.m.topics...)}, nil
	}
	return nil, errors.New("unexpected query: " + q)
}

type memRows struct {
	cols []string
	rows [][]driver.Value
}

func (r *memRows) Columns() []string { return r.cols }
func (r *memRows) Close() error      { return nil }
func (r *memRows) Next(dest []driver.Value) error {
	if len(r.rows) == 0 {
		return io.EOF
	}
	copy(dest, r.rows[0])
	r.rows = r.rows[1:]
	return nil
}

func TestPostgresSourceSeedsEmptyDatabase(t *testing.T) {
	tables := &memTables{}
	src := NewPostgresSourceFromDB(sql.OpenDB(tables))
	defer src.Close()

	r, err := src.Load(context.Background())
	tester.NoErr(t, err)
	def := Default()
	tester.Eq(t, r.Participants(), def.Participants())
	tester.Eq(t, r.Topics(), def.Topics())
	seeded := tables.inserts
	tester.Eq(t, seeded, len(def.Participants())+len(def.Topics()))

	_, err = src.Load(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, tables.inserts, seeded, "populated tables are not seeded again")
}

func TestPostgresSourceKeepsStoredRoster(t *testing.T) {
	tables := &memTables{
		participants: [][]driver.Value{
			{"hypatia", "Hypatia", "", "Astronomer", "", ""},
			{"socrates", "Socrates", "", "Philosopher", "", ""},
		},
		topics: [][]driver.Value{{"Justice"}},
	}
	src := NewPostgresSourceFromDB(sql.OpenDB(tables))
	defer src.Close()

	r, err := src.Load(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, len(r.Participants()), 2)
	tester.Eq(t, r.Topics(), []string{"Justice"})
	tester.Eq(t, tables.inserts, 0)
}
