package data

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/drowsy-go/model"
	"github.com/khaledhikmat/drowsy-go/service/config"
)

type sqliteService struct {
	CfgSvc config.IService
	db     *sql.DB
	mu     sync.Mutex
}

func NewSqlite(cfgsvc config.IService) (IService, error) {
	path := cfgsvc.GetSqlitePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, xerrors.Errorf("creating database folder: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &sqliteService{
		CfgSvc: cfgsvc,
		db:     db,
	}

	if err := svc.migrate(); err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to migrate database: %w", err)
	}

	return svc, nil
}

func (svc *sqliteService) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		source TEXT NOT NULL,
		counter INTEGER NOT NULL,
		threshold INTEGER NOT NULL,
		faces INTEGER NOT NULL,
		snapshot_path TEXT,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id);

	CREATE TABLE IF NOT EXISTS errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		processor TEXT NOT NULL,
		inner_error TEXT,
		message TEXT,
		stack_trace TEXT,
		misc TEXT
	);

	CREATE TABLE IF NOT EXISTS alerter_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		alerts INTEGER NOT NULL,
		suppressed INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		uptime INTEGER NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_stats (
		session_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	`

	_, err := svc.db.Exec(schema)
	return err
}

func (svc *sqliteService) NewError(err interface{}) error {
	rec := toErrorRecord(err, time.Now().Unix())

	misc, mErr := json.Marshal(rec.Misc)
	if mErr != nil {
		misc = []byte("null")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, dbErr := svc.db.Exec(
		`INSERT INTO errors (timestamp, processor, inner_error, message, stack_trace, misc) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Processor, rec.Inner, rec.Message, rec.StackTrace, string(misc),
	)
	if dbErr != nil {
		return xerrors.Errorf("inserting error: %w", dbErr)
	}
	return nil
}

func (svc *sqliteService) RetrieveErrors() ([]ErrorRecord, error) {
	rows, err := svc.db.Query(`SELECT timestamp, processor, inner_error, message, stack_trace, misc FROM errors ORDER BY id`)
	if err != nil {
		return nil, xerrors.Errorf("querying errors: %w", err)
	}
	defer rows.Close()

	records := []ErrorRecord{}
	for rows.Next() {
		var rec ErrorRecord
		var misc string
		if err := rows.Scan(&rec.Timestamp, &rec.Processor, &rec.Inner, &rec.Message, &rec.StackTrace, &misc); err != nil {
			return nil, xerrors.Errorf("scanning error row: %w", err)
		}
		_ = json.Unmarshal([]byte(misc), &rec.Misc)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (svc *sqliteService) NewAlert(alert model.AlertEvent) error {
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().Unix()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err := svc.db.Exec(
		`INSERT INTO alerts (id, session_id, source, counter, threshold, faces, snapshot_path, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.SessionID, alert.Source, alert.Counter, alert.Threshold, alert.Faces, alert.SnapshotPath, alert.Timestamp,
	)
	if err != nil {
		return xerrors.Errorf("inserting alert %s: %w", alert.ID, err)
	}
	return nil
}

func (svc *sqliteService) RetrieveAlerts(sessionID string) ([]model.AlertEvent, error) {
	query := `SELECT id, session_id, source, counter, threshold, faces, snapshot_path, timestamp FROM alerts`
	args := []interface{}{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY timestamp, rowid`

	rows, err := svc.db.Query(query, args...)
	if err != nil {
		return nil, xerrors.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []model.AlertEvent{}
	for rows.Next() {
		var a model.AlertEvent
		var snapshot sql.NullString
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Source, &a.Counter, &a.Threshold, &a.Faces, &snapshot, &a.Timestamp); err != nil {
			return nil, xerrors.Errorf("scanning alert row: %w", err)
		}
		a.SnapshotPath = snapshot.String
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (svc *sqliteService) NewAlerterStats(stats model.AlerterStats) error {
	stats.Timestamp = time.Now().Unix()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err := svc.db.Exec(
		`INSERT INTO alerter_stats (name, alerts, suppressed, errors, uptime, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		stats.Name, stats.Alerts, stats.Suppressed, stats.Errors, stats.Uptime, stats.Timestamp,
	)
	if err != nil {
		return xerrors.Errorf("inserting alerter stats: %w", err)
	}
	return nil
}

// Session stats are stored as a JSON payload keyed by session; a second
// write for the same session replaces the first.
func (svc *sqliteService) NewSessionStats(stats model.SessionStats) error {
	stats.Timestamp = time.Now().Unix()

	payload, err := json.Marshal(stats)
	if err != nil {
		return xerrors.Errorf("marshalling session stats: %w", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err = svc.db.Exec(
		`INSERT OR REPLACE INTO session_stats (session_id, payload, timestamp) VALUES (?, ?, ?)`,
		stats.SessionID, string(payload), stats.Timestamp,
	)
	if err != nil {
		return xerrors.Errorf("inserting session stats: %w", err)
	}
	return nil
}

func (svc *sqliteService) RetrieveSessionStats() ([]model.SessionStats, error) {
	rows, err := svc.db.Query(`SELECT payload FROM session_stats ORDER BY timestamp, rowid`)
	if err != nil {
		return nil, xerrors.Errorf("querying session stats: %w", err)
	}
	defer rows.Close()

	result := []model.SessionStats{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, xerrors.Errorf("scanning session stats row: %w", err)
		}
		var s model.SessionStats
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, xerrors.Errorf("decoding session stats: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

func (svc *sqliteService) Finalize() error {
	return svc.db.Close()
}
