package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/warband/internal/ident"
)

// Store is the SQLite save-data channel: root records of every faction plus
// campaign metadata.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS troop_roots (
		position INTEGER PRIMARY KEY,
		scope TEXT NOT NULL,
		root_id TEXT NOT NULL UNIQUE,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_troop_roots_scope ON troop_roots(scope);
	`
	_, err := st.conn.Exec(schema)
	return err
}

type rootRow struct {
	Position   int    `db:"position"`
	Scope      string `db:"scope"`
	RootID     string `db:"root_id"`
	RecordJSON string `db:"record_json"`
}

// SaveRoots writes every root record (full replace).
func (st *Store) SaveRoots(records []Record) error {
	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := writeRoots(tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

func writeRoots(tx *sqlx.Tx, records []Record) error {
	if _, err := tx.Exec("DELETE FROM troop_roots"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO troop_roots
		(position, scope, root_id, record_json)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode root %s: %w", rec.ID, err)
		}
		scope := "unknown"
		if p, ok := ident.Decode(rec.ID); ok {
			scope = p.Scope.String()
		}
		if _, err := stmt.Exec(i, scope, rec.ID, string(body)); err != nil {
			return fmt.Errorf("insert root %s: %w", rec.ID, err)
		}
	}
	return nil
}

// LoadRoots reads every root record in save order. Rows that fail to decode
// are skipped and logged.
func (st *Store) LoadRoots() ([]Record, error) {
	var rows []rootRow
	if err := st.conn.Select(&rows,
		"SELECT position, scope, root_id, record_json FROM troop_roots ORDER BY position",
	); err != nil {
		return nil, fmt.Errorf("load roots: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		var rec Record
		if err := json.Unmarshal([]byte(r.RecordJSON), &rec); err != nil {
			slog.Warn("skipping unreadable root record", "root", r.RootID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// HasTrees reports whether any root record is stored.
func (st *Store) HasTrees() bool {
	var n int
	if err := st.conn.Get(&n, "SELECT COUNT(*) FROM troop_roots"); err != nil {
		return false
	}
	return n > 0
}

// SaveMeta stores a key-value pair in campaign metadata.
func (st *Store) SaveMeta(key, value string) error {
	_, err := st.conn.Exec(
		"INSERT OR REPLACE INTO campaign_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (st *Store) GetMeta(key string) (string, error) {
	var value string
	err := st.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// SaveCampaign writes the root records and metadata in one transaction;
// on failure neither is changed.
func (st *Store) SaveCampaign(records []Record, meta map[string]string) error {
	slog.Info("saving custom troop trees", "roots", len(records))

	tx, err := st.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := writeRoots(tx, records); err != nil {
		return fmt.Errorf("save roots: %w", err)
	}
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO campaign_meta (key, value) VALUES (?, ?)",
			k, meta[k],
		); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.Info("custom troop trees saved")
	return nil
}
