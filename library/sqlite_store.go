package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the library snapshot in a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

type recordRow struct {
	Seq int `db:"seq"`
	LendingRecord
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the DB.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            stream TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS items (
            title TEXT PRIMARY KEY,
            author TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity >= 0)
        );`,
		// title and member_id are lookup keys only; history survives unknown references.
		`CREATE TABLE IF NOT EXISTS lending_records (
            seq INTEGER PRIMARY KEY,
            title TEXT NOT NULL,
            member_id INTEGER NOT NULL,
            issued_at DATETIME NOT NULL,
            returned_at DATETIME,
            fine INTEGER NOT NULL DEFAULT 0 CHECK (fine >= 0)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Snapshot I/O
// ---------------------------------------------------------------------------

// Load reads the whole snapshot; records come back in issue order.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	snap := &Snapshot{}
	if err := s.db.Select(&snap.Members, `SELECT id,name,stream FROM members ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if err := s.db.Select(&snap.Items, `SELECT title,author,quantity FROM items ORDER BY title`); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	var rows []recordRow
	if err := s.db.Select(&rows, `SELECT seq,title,member_id,issued_at,returned_at,fine FROM lending_records ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load lending records: %w", err)
	}
	for _, r := range rows {
		snap.Records = append(snap.Records, r.LendingRecord)
	}
	return snap, nil
}

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	if snap == nil {
		snap = &Snapshot{}
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"members", "items", "lending_records"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, m := range snap.Members {
		if _, err := tx.NamedExec(`INSERT INTO members(id,name,stream) VALUES(:id,:name,:stream)`, m); err != nil {
			return fmt.Errorf("save member %d: %w", m.ID, err)
		}
	}
	for _, it := range snap.Items {
		if _, err := tx.NamedExec(`INSERT INTO items(title,author,quantity) VALUES(:title,:author,:quantity)`, it); err != nil {
			return fmt.Errorf("save item %q: %w", it.Title, err)
		}
	}
	for i, r := range snap.Records {
		row := recordRow{Seq: i + 1, LendingRecord: r}
		if _, err := tx.NamedExec(`INSERT INTO lending_records(seq,title,member_id,issued_at,returned_at,fine)
            VALUES(:seq,:title,:member_id,:issued_at,:returned_at,:fine)`, row); err != nil {
			return fmt.Errorf("save lending record %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
