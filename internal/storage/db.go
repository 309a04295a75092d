package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"knitnorm/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sourceRef TEXT NOT NULL,
  sourceType TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  rawJson TEXT NOT NULL,
  error TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(sourceRef)
);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);

CREATE TABLE IF NOT EXISTS objects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recordId INTEGER NOT NULL UNIQUE,
  canonicalJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(recordId) REFERENCES records(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRecord stores a raw record, reusing the existing row when the same
// sourceRef was seen before.
func (d *DB) InsertRecord(sourceRef, sourceType, rawJSON string) (int, error) {
	_, err := d.conn.Exec(`
INSERT INTO records (sourceRef, sourceType, rawJson)
VALUES (?, ?, ?)
ON CONFLICT(sourceRef) DO UPDATE SET
  rawJson = excluded.rawJson,
  sourceType = excluded.sourceType,
  status = 'pending',
  error = NULL,
  updatedAt = CURRENT_TIMESTAMP
`, sourceRef, sourceType, rawJSON)
	if err != nil {
		return 0, err
	}

	var id int
	err = d.conn.QueryRow(`SELECT id FROM records WHERE sourceRef = ?`, sourceRef).Scan(&id)
	return id, err
}

func (d *DB) ListRecordsByStatus(status string, limit int) ([]internal.RecordRow, error) {
	rows, err := d.conn.Query(`
SELECT id, sourceRef, sourceType, status, rawJson, error
FROM records WHERE status = ? ORDER BY id LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.RecordRow{}
	for rows.Next() {
		var r internal.RecordRow
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.SourceRef, &r.SourceType, &r.Status, &r.RawJSON, &errMsg); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.Error = &errMsg.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) RecordBySourceRef(sourceRef string) (internal.RecordRow, error) {
	var r internal.RecordRow
	var errMsg sql.NullString
	err := d.conn.QueryRow(`
SELECT id, sourceRef, sourceType, status, rawJson, error
FROM records WHERE sourceRef = ?`, sourceRef).Scan(&r.ID, &r.SourceRef, &r.SourceType, &r.Status, &r.RawJSON, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return r, errors.New("record not found: " + sourceRef)
	}
	if err != nil {
		return r, err
	}
	if errMsg.Valid {
		r.Error = &errMsg.String
	}
	return r, nil
}

func (d *DB) UpdateRecordStatus(id int, status string, errMsg *string) error {
	_, err := d.conn.Exec(`
UPDATE records SET status = ?, error = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, errMsg, id)
	return err
}

// UpsertObject stores the canonical JSON for a record, replacing any earlier
// result from a reprocessing run.
func (d *DB) UpsertObject(recordID int, canonicalJSON string) error {
	_, err := d.conn.Exec(`
INSERT INTO objects (recordId, canonicalJson) VALUES (?, ?)
ON CONFLICT(recordId) DO UPDATE SET
  canonicalJson = excluded.canonicalJson,
  createdAt = CURRENT_TIMESTAMP
`, recordID, canonicalJSON)
	return err
}

func (d *DB) ObjectByRecordID(recordID int) (string, error) {
	var blob string
	err := d.conn.QueryRow(`SELECT canonicalJson FROM objects WHERE recordId = ?`, recordID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no object for record")
	}
	return blob, err
}

func (d *DB) InsertRun(traceID, countsJSON, timingsJSON string) error {
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, countsJson, timingsJson) VALUES (?, ?, ?)`, traceID, countsJSON, timingsJSON)
	return err
}

// ListProcessed returns every record row that has finished processing, for
// report export.
func (d *DB) ListProcessed() ([]internal.RecordRow, []string, error) {
	rows, err := d.conn.Query(`
SELECT r.id, r.sourceRef, r.sourceType, r.status, r.rawJson, r.error, COALESCE(o.canonicalJson, '')
FROM records r
LEFT JOIN objects o ON o.recordId = r.id
WHERE r.status IN ('processed', 'rejected')
ORDER BY r.id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	records := []internal.RecordRow{}
	objects := []string{}
	for rows.Next() {
		var r internal.RecordRow
		var errMsg sql.NullString
		var canonical string
		if err := rows.Scan(&r.ID, &r.SourceRef, &r.SourceType, &r.Status, &r.RawJSON, &errMsg, &canonical); err != nil {
			return nil, nil, err
		}
		if errMsg.Valid {
			r.Error = &errMsg.String
		}
		records = append(records, r)
		objects = append(objects, canonical)
	}
	return records, objects, rows.Err()
}
