// Package swingdb stores analysed swing sessions in SQLite.
//
// Only sessions and their summary metrics are persisted. Intermediate
// series (conditioned streams, navigation state) are recomputed on
// demand from the recording; they are never written to the database.
package swingdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/swing.report/internal/imu"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the session database at path. Callers are
// expected to run MigrateUp before use.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer product; serialise access rather than fighting
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{db}, nil
}

// Session is one analysed recording.
type Session struct {
	ID             string    `json:"id"`
	RecordedAt     time.Time `json:"recorded_at"`
	SampleCount    int       `json:"sample_count"`
	SampleInterval float64   `json:"sample_interval"`
	Source         string    `json:"source"`
}

// NewSession builds a session row for a recording analysed now.
func NewSession(sampleCount int, dt float64, source string) Session {
	return Session{
		ID:             uuid.NewString(),
		RecordedAt:     time.Now().UTC(),
		SampleCount:    sampleCount,
		SampleInterval: dt,
		Source:         source,
	}
}

// StoredMetrics is a swing_metrics row. Speeds are stored in m/s;
// unit conversion happens at the presentation edge.
type StoredMetrics struct {
	SessionID      string  `json:"session_id"`
	SwingStart     int     `json:"swing_start"`
	SwingEnd       int     `json:"swing_end"`
	ImpactIndex    int     `json:"impact_index"`
	PeakSpeedMps   float64 `json:"peak_speed"`
	PeakAngularDps float64 `json:"peak_angular_dps"`
	TimeToImpactMs float64 `json:"time_to_impact_ms"`
}

// InsertSession records a new analysed session.
func (db *DB) InsertSession(s Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, recorded_at, sample_count, sample_interval, source)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.RecordedAt, s.SampleCount, s.SampleInterval, s.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// InsertSwingMetrics records the detected swing for a session. A
// session with no detected swing simply has no metrics row.
func (db *DB) InsertSwingMetrics(sessionID string, m imu.SwingMetrics) error {
	_, err := db.Exec(`
		INSERT INTO swing_metrics
			(session_id, swing_start, swing_end, impact_index,
			 peak_speed_mps, peak_angular_dps, time_to_impact_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, m.Start, m.End, m.ImpactIndex,
		m.PeakSpeedKmh/3.6, m.PeakAngularDps, m.TimeToImpactMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert swing metrics: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, recorded_at, sample_count, sample_interval, COALESCE(source, '')
		FROM sessions ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.RecordedAt, &s.SampleCount, &s.SampleInterval, &s.Source); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession returns a session by ID, or (nil, nil) if it does not
// exist.
func (db *DB) GetSession(id string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, recorded_at, sample_count, sample_interval, COALESCE(source, '')
		FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.RecordedAt, &s.SampleCount, &s.SampleInterval, &s.Source)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// GetSwingMetrics returns the metrics row for a session, or
// (nil, nil) when the session had no detected swing.
func (db *DB) GetSwingMetrics(sessionID string) (*StoredMetrics, error) {
	var m StoredMetrics
	err := db.QueryRow(`
		SELECT session_id, swing_start, swing_end, impact_index,
		       peak_speed_mps, peak_angular_dps, time_to_impact_ms
		FROM swing_metrics WHERE session_id = ?`, sessionID).
		Scan(&m.SessionID, &m.SwingStart, &m.SwingEnd, &m.ImpactIndex,
			&m.PeakSpeedMps, &m.PeakAngularDps, &m.TimeToImpactMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swing metrics: %w", err)
	}
	return &m, nil
}
