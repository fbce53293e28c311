package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// SQLiteSchema creates the normalized snapshot tables. Position columns keep
// insertion and newest-first orders.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS companies (
    id                TEXT PRIMARY KEY,
    position          INTEGER NOT NULL,
    name              TEXT NOT NULL,
    location          TEXT NOT NULL,
    linkedin_profile  TEXT NOT NULL DEFAULT '',
    comments          TEXT NOT NULL DEFAULT '',
    periodicity_days  INTEGER NOT NULL DEFAULT 14
);

CREATE TABLE IF NOT EXISTS company_contacts (
    company_id  TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL CHECK(kind IN ('email', 'phone')),
    position    INTEGER NOT NULL,
    value       TEXT NOT NULL,
    PRIMARY KEY (company_id, kind, position)
);

CREATE TABLE IF NOT EXISTS communications (
    id          TEXT PRIMARY KEY,
    company_id  TEXT NOT NULL,
    position    INTEGER NOT NULL,
    type        TEXT NOT NULL,
    timestamp   TEXT NOT NULL,
    notes       TEXT NOT NULL DEFAULT '',
    outcome     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_communications_company ON communications(company_id, position);

CREATE TABLE IF NOT EXISTS scheduled_communications (
    id              TEXT PRIMARY KEY,
    position        INTEGER NOT NULL,
    company_id      TEXT NOT NULL,
    type            TEXT NOT NULL,
    scheduled_date  TEXT NOT NULL,
    notes           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS communication_methods (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    sequence     INTEGER NOT NULL,
    mandatory    INTEGER NOT NULL DEFAULT 0
);
`

type sqliteStore struct {
	db *sql.DB
}

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// OpenSQLiteStore opens (or creates) the snapshot database at dbPath and
// runs migrations.
func OpenSQLiteStore(dbPath string) (SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Load() (*models.Snapshot, error) {
	return loadSnapshot(s.db)
}

func loadSnapshot(q querier) (*models.Snapshot, error) {
	var version string
	err := q.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: read version: %w", err)
	}

	snap := models.NewSnapshot()
	snap.Version = version
	if err := checkVersion(snap); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if snap.Companies, err = loadCompanies(q); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap.History, err = loadHistory(q); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap.Scheduled, err = loadScheduled(q); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap.Methods, err = loadMethods(q); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}

func loadCompanies(q querier) ([]models.Company, error) {
	rows, err := q.Query(`
		SELECT id, name, location, linkedin_profile, comments, periodicity_days
		FROM companies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	index := make(map[string]int)
	for rows.Next() {
		c := models.Company{Emails: []string{}, PhoneNumbers: []string{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.LinkedInProfile, &c.Comments, &c.CommunicationPeriodicity); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		index[c.ID] = len(companies)
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}

	contacts, err := q.Query(`SELECT company_id, kind, value FROM company_contacts ORDER BY company_id, kind, position`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer contacts.Close()

	for contacts.Next() {
		var companyID, kind, value string
		if err := contacts.Scan(&companyID, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		i, ok := index[companyID]
		if !ok {
			continue
		}
		switch kind {
		case "email":
			companies[i].Emails = append(companies[i].Emails, value)
		case "phone":
			companies[i].PhoneNumbers = append(companies[i].PhoneNumbers, value)
		}
	}
	if err := contacts.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return companies, nil
}

func loadHistory(q querier) (map[string][]models.LoggedCommunication, error) {
	rows, err := q.Query(`
		SELECT id, company_id, type, timestamp, notes, outcome
		FROM communications ORDER BY company_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query communications: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]models.LoggedCommunication)
	for rows.Next() {
		var (
			e  models.LoggedCommunication
			ts string
		)
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Type, &ts, &e.Notes, &e.Outcome); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		if e.Timestamp, err = parseStoredTime(ts); err != nil {
			return nil, fmt.Errorf("communication %s: %w", e.ID, err)
		}
		history[e.CompanyID] = append(history[e.CompanyID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communications: %w", err)
	}
	return history, nil
}

func loadScheduled(q querier) ([]models.ScheduledCommunication, error) {
	rows, err := q.Query(`
		SELECT id, company_id, type, scheduled_date, notes
		FROM scheduled_communications ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query scheduled communications: %w", err)
	}
	defer rows.Close()

	scheduled := []models.ScheduledCommunication{}
	for rows.Next() {
		var (
			item models.ScheduledCommunication
			date string
		)
		if err := rows.Scan(&item.ID, &item.CompanyID, &item.Type, &date, &item.Notes); err != nil {
			return nil, fmt.Errorf("scan scheduled communication: %w", err)
		}
		if item.ScheduledDate, err = parseStoredTime(date); err != nil {
			return nil, fmt.Errorf("scheduled communication %s: %w", item.ID, err)
		}
		scheduled = append(scheduled, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled communications: %w", err)
	}
	return scheduled, nil
}

func loadMethods(q querier) ([]models.CommunicationMethod, error) {
	rows, err := q.Query(`
		SELECT id, name, description, sequence, mandatory
		FROM communication_methods ORDER BY sequence, id`)
	if err != nil {
		return nil, fmt.Errorf("query methods: %w", err)
	}
	defer rows.Close()

	var methods []models.CommunicationMethod
	for rows.Next() {
		var m models.CommunicationMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Sequence, &m.Mandatory); err != nil {
			return nil, fmt.Errorf("scan method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate methods: %w", err)
	}
	return methods, nil
}

// Save replaces every table inside one transaction.
func (s *sqliteStore) Save(snap *models.Snapshot) error {
	return s.inTx(func(tx *sql.Tx) error {
		return writeSnapshot(tx, snap)
	})
}

// Update loads and rewrites the tables inside one immediate transaction, so
// the database write lock is held from the first read to the commit.
func (s *sqliteStore) Update(fn func(latest *models.Snapshot) (*models.Snapshot, error)) error {
	return s.inTx(func(tx *sql.Tx) error {
		latest, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		next, err := fn(latest)
		if err != nil || next == nil {
			return err
		}
		return writeSnapshot(tx, next)
	})
}

// inTx commits when fn succeeds and rolls back otherwise.
func (s *sqliteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving snapshot: commit: %w", err)
	}
	return nil
}

func writeSnapshot(tx *sql.Tx, snap *models.Snapshot) error {
	for _, table := range []string{"company_contacts", "companies", "communications", "scheduled_communications", "communication_methods"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("saving snapshot: clear %s: %w", table, err)
		}
	}

	version := snap.Version
	if version == "" {
		version = models.SnapshotVersion
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, version); err != nil {
		return fmt.Errorf("saving snapshot: write version: %w", err)
	}

	for pos, c := range snap.Companies {
		if _, err := tx.Exec(
			`INSERT INTO companies (id, position, name, location, linkedin_profile, comments, periodicity_days) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, pos, c.Name, c.Location, c.LinkedInProfile, c.Comments, c.CommunicationPeriodicity,
		); err != nil {
			return fmt.Errorf("saving snapshot: insert company %q: %w", c.ID, err)
		}
		if err := insertContacts(tx, c.ID, "email", c.Emails); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		if err := insertContacts(tx, c.ID, "phone", c.PhoneNumbers); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}

	for companyID, entries := range snap.History {
		for pos, e := range entries {
			if _, err := tx.Exec(
				`INSERT INTO communications (id, company_id, position, type, timestamp, notes, outcome) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				e.ID, companyID, pos, string(e.Type), formatStoredTime(e.Timestamp), e.Notes, e.Outcome,
			); err != nil {
				return fmt.Errorf("saving snapshot: insert communication %q: %w", e.ID, err)
			}
		}
	}

	for pos, item := range snap.Scheduled {
		if _, err := tx.Exec(
			`INSERT INTO scheduled_communications (id, position, company_id, type, scheduled_date, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, pos, item.CompanyID, string(item.Type), formatStoredTime(item.ScheduledDate), item.Notes,
		); err != nil {
			return fmt.Errorf("saving snapshot: insert scheduled communication %q: %w", item.ID, err)
		}
	}

	for _, m := range snap.Methods {
		if _, err := tx.Exec(
			`INSERT INTO communication_methods (id, name, description, sequence, mandatory) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.Description, m.Sequence, m.Mandatory,
		); err != nil {
			return fmt.Errorf("saving snapshot: insert method %q: %w", m.ID, err)
		}
	}

	return nil
}

func insertContacts(tx *sql.Tx, companyID, kind string, values []string) error {
	for pos, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO company_contacts (company_id, kind, position, value) VALUES (?, ?, ?, ?)`,
			companyID, kind, pos, v,
		); err != nil {
			return fmt.Errorf("insert %s for company %q: %w", kind, companyID, err)
		}
	}
	return nil
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}
