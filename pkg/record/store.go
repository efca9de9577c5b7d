package record

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Stored is a record with its local dataset identity.
type Stored struct {
	ID int64 `json:"id"`
	Record
}

// Store persists the working dataset in a local SQLite database. The dataset
// is the staging area for records before they are replayed into the portal.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	part_number         TEXT NOT NULL,
	station             TEXT NOT NULL,
	version             TEXT NOT NULL,
	description         TEXT NOT NULL,
	manufacturing_group TEXT NOT NULL DEFAULT 'DEFAULT',
	source              TEXT NOT NULL DEFAULT 'manual',
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_part_number ON records(part_number);
`

// NewStore opens (or creates) the dataset database at the given path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a record and returns its dataset ID. The record should already
// be normalized and validated.
func (s *Store) Add(r Record) (int64, error) {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.Source == "" {
		r.Source = "manual"
	}

	result, err := s.db.Exec(
		`INSERT INTO records (part_number, station, version, description, manufacturing_group, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PartNumber, r.Station, r.Version, r.Description, r.ManufacturingGroup, r.Source, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	return result.LastInsertId()
}

// Update replaces the record with the given ID.
func (s *Store) Update(id int64, r Record) error {
	result, err := s.db.Exec(
		`UPDATE records SET part_number=?, station=?, version=?, description=?, manufacturing_group=?, updated_at=?
		 WHERE id=?`,
		r.PartNumber, r.Station, r.Version, r.Description, r.ManufacturingGroup, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM records WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id int64) (Stored, error) {
	row := s.db.QueryRow(
		`SELECT id, part_number, station, version, description, manufacturing_group, source, created_at, updated_at
		 FROM records WHERE id=?`, id)
	stored, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Stored{}, fmt.Errorf("record %d not found", id)
	}
	return stored, err
}

// List returns all records in insertion order.
func (s *Store) List() ([]Stored, error) {
	rows, err := s.db.Query(
		`SELECT id, part_number, station, version, description, manufacturing_group, source, created_at, updated_at
		 FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Search returns records where any field contains the term,
// case-insensitively.
func (s *Store) Search(term string) ([]Stored, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.db.Query(
		`SELECT id, part_number, station, version, description, manufacturing_group, source, created_at, updated_at
		 FROM records
		 WHERE lower(part_number) LIKE ? OR lower(station) LIKE ? OR lower(version) LIKE ?
		    OR lower(description) LIKE ? OR lower(manufacturing_group) LIKE ?
		 ORDER BY id`,
		pattern, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Stored, error) {
	var stored Stored
	err := row.Scan(
		&stored.ID,
		&stored.PartNumber,
		&stored.Station,
		&stored.Version,
		&stored.Description,
		&stored.ManufacturingGroup,
		&stored.Source,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	return stored, err
}

func collectRecords(rows *sql.Rows) ([]Stored, error) {
	var records []Stored
	for rows.Next() {
		stored, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, stored)
	}
	return records, rows.Err()
}
