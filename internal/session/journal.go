package session

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Journal is the sqlite record of sessions and applied turns. It is
// diagnostic history, not the source of truth; live state stays in the
// store and save files.
type Journal struct {
	conn *sqlx.DB
}

// OpenJournal opens or creates the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		world_seed INTEGER NOT NULL,
		macro_biome TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		turn_id TEXT NOT NULL,
		turn_counter INTEGER NOT NULL,
		applied_at TEXT NOT NULL,
		summary TEXT NOT NULL,
		delta_count INTEGER NOT NULL,
		state_digest TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordSession upserts a session row.
func (j *Journal) RecordSession(id string, createdAt time.Time, seed uint32, biome string) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO sessions (id, created_at, world_seed, macro_biome) VALUES (?, ?, ?, ?)",
		id, createdAt.UTC().Format(time.RFC3339), seed, biome,
	)
	return err
}

// TurnRecord is one applied turn.
type TurnRecord struct {
	SessionID   string `db:"session_id"`
	TurnID      string `db:"turn_id"`
	TurnCounter uint64 `db:"turn_counter"`
	AppliedAt   string `db:"applied_at"`
	Summary     string `db:"summary"`
	DeltaCount  int    `db:"delta_count"`
	StateDigest string `db:"state_digest"`
}

// RecordTurn appends one turn to the journal.
func (j *Journal) RecordTurn(r TurnRecord) error {
	_, err := j.conn.Exec(
		`INSERT INTO turns (session_id, turn_id, turn_counter, applied_at, summary, delta_count, state_digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.TurnID, r.TurnCounter, r.AppliedAt, r.Summary, r.DeltaCount, r.StateDigest,
	)
	return err
}

// TurnCount returns the number of journaled turns for a session.
func (j *Journal) TurnCount(sessionID string) (int, error) {
	var n int
	err := j.conn.Get(&n, "SELECT COUNT(*) FROM turns WHERE session_id = ?", sessionID)
	return n, err
}

// RecentTurns returns the latest n turn records for a session.
func (j *Journal) RecentTurns(sessionID string, n int) ([]TurnRecord, error) {
	var out []TurnRecord
	err := j.conn.Select(&out,
		`SELECT session_id, turn_id, turn_counter, applied_at, summary, delta_count, state_digest
		 FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, n,
	)
	return out, err
}
