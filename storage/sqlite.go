package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"raptor.dev/transit/model"
)

// SQLiteConfig mirrors the teacher's storage.SQLiteConfig: an on-disk
// cache is opt-in, otherwise everything lives in a transient
// ":memory:" database for the lifetime of the process.
type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// SQLiteStore is an on-disk cache of the boundary tables, modeled on
// the teacher's storage.SQLiteStorage schema-per-table style. It is
// loaded fully into model.*Record slices by Reader, so query-time
// lookups never touch the database — C1's O(1) contract is preserved
// above the storage layer, not inside it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if absent) the SQLite-backed store.
func NewSQLiteStore(cfg ...SQLiteConfig) (*SQLiteStore, error) {
	onDisk, directory := false, ""
	if len(cfg) > 0 {
		onDisk, directory = cfg[0].OnDisk, cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/raptor.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS stop (
    code TEXT NOT NULL,
    name TEXT NOT NULL,
    min_transfer_minutes INTEGER NOT NULL,
PRIMARY KEY (code)
);

CREATE TABLE IF NOT EXISTS route (
    route_id TEXT NOT NULL,
    name TEXT NOT NULL,
    running_days TEXT NOT NULL,
    comfort REAL NOT NULL,
    fare_per_km REAL NOT NULL,
PRIMARY KEY (route_id)
);

CREATE TABLE IF NOT EXISTS stop_time (
    route_id TEXT NOT NULL,
    stop_code TEXT NOT NULL,
    position INTEGER NOT NULL,
    arrival INTEGER,
    departure INTEGER,
    day_offset INTEGER NOT NULL,
PRIMARY KEY (route_id, position)
);

CREATE TABLE IF NOT EXISTS station_metadata (
    stop_code TEXT NOT NULL,
    min_transfer_minutes INTEGER NOT NULL,
    descriptive TEXT NOT NULL,
PRIMARY KEY (stop_code)
);
`

func (s *SQLiteStore) Writer() (Writer, error) { return &sqliteWriter{db: s.db}, nil }
func (s *SQLiteStore) Reader() (Reader, error) { return &sqliteReader{db: s.db}, nil }
func (s *SQLiteStore) Close() error            { return s.db.Close() }

type sqliteWriter struct {
	db *sql.DB
	tx *sql.Tx
}

func (w *sqliteWriter) WriteStop(rec model.StopRecord) error {
	_, err := w.db.Exec(`INSERT OR REPLACE INTO stop (code, name, min_transfer_minutes) VALUES (?, ?, ?)`,
		rec.Code, rec.Name, rec.MinTransferMinutes)
	return err
}

func (w *sqliteWriter) WriteRoute(rec model.RouteRecord) error {
	_, err := w.db.Exec(`INSERT OR REPLACE INTO route (route_id, name, running_days, comfort, fare_per_km) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, model.FormatRunningDays(rec.RunningDays), rec.Comfort, rec.FarePerKm)
	return err
}

func (w *sqliteWriter) WriteStationMetadata(rec model.StationMetadata) error {
	_, err := w.db.Exec(`INSERT OR REPLACE INTO station_metadata (stop_code, min_transfer_minutes, descriptive) VALUES (?, ?, ?)`,
		rec.StopCode, rec.MinTransferMinutes, model.FormatDescriptive(rec.Descriptive))
	return err
}

// BeginStopTimes opens one transaction for the whole stop-time load,
// the same batching contract as the teacher's FeedWriter around
// stop_times.txt.
func (w *sqliteWriter) BeginStopTimes() error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning stop_time transaction: %w", err)
	}
	w.tx = tx
	return nil
}

func (w *sqliteWriter) WriteStopTime(rec model.StopTimeRecord) error {
	_, err := w.tx.Exec(`INSERT OR REPLACE INTO stop_time (route_id, stop_code, position, arrival, departure, day_offset) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RouteID, rec.StopCode, rec.Position, nullableInt(rec.Arrival), nullableInt(rec.Departure), rec.DayOffset)
	return err
}

func (w *sqliteWriter) EndStopTimes() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	return err
}

func (w *sqliteWriter) Close() error { return nil }

type sqliteReader struct{ db *sql.DB }

func (r *sqliteReader) Stops() ([]model.StopRecord, error) {
	rows, err := r.db.Query(`SELECT code, name, min_transfer_minutes FROM stop`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StopRecord
	for rows.Next() {
		var rec model.StopRecord
		if err := rows.Scan(&rec.Code, &rec.Name, &rec.MinTransferMinutes); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqliteReader) Routes() ([]model.RouteRecord, error) {
	rows, err := r.db.Query(`SELECT route_id, name, running_days, comfort, fare_per_km FROM route`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RouteRecord
	for rows.Next() {
		var rec model.RouteRecord
		var days string
		if err := rows.Scan(&rec.ID, &rec.Name, &days, &rec.Comfort, &rec.FarePerKm); err != nil {
			return nil, err
		}
		mask, err := model.ParseRunningDays(days)
		if err != nil {
			return nil, err
		}
		rec.RunningDays = mask
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqliteReader) StopTimes() ([]model.StopTimeRecord, error) {
	rows, err := r.db.Query(`SELECT route_id, stop_code, position, arrival, departure, day_offset FROM stop_time ORDER BY route_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StopTimeRecord
	for rows.Next() {
		var rec model.StopTimeRecord
		var arrival, departure sql.NullInt64
		if err := rows.Scan(&rec.RouteID, &rec.StopCode, &rec.Position, &arrival, &departure, &rec.DayOffset); err != nil {
			return nil, err
		}
		if arrival.Valid {
			v := int(arrival.Int64)
			rec.Arrival = &v
		}
		if departure.Valid {
			v := int(departure.Int64)
			rec.Departure = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqliteReader) StationMetadata() ([]model.StationMetadata, error) {
	rows, err := r.db.Query(`SELECT stop_code, min_transfer_minutes, descriptive FROM station_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StationMetadata
	for rows.Next() {
		var rec model.StationMetadata
		var descriptive string
		if err := rows.Scan(&rec.StopCode, &rec.MinTransferMinutes, &descriptive); err != nil {
			return nil, err
		}
		rec.Descriptive = model.ParseDescriptive(descriptive)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
