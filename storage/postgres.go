package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"raptor.dev/transit/model"
)

// PostgresStore is the shared-cluster alternative to SQLiteStore,
// grounded on the teacher's storage.PSQLStorage: same load-to-memory
// contract (a Reader call materializes every boundary table once,
// query time never touches the database), bulk stop-time loading via
// pq.CopyIn the way the teacher bulk-loads stop_times.txt.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and ensures the boundary-table
// schema exists. If clearDB is true, existing tables are dropped
// first — mirrors the teacher's NewPSQLStorage test-only reset knob.
func NewPostgresStore(connStr string, clearDB bool) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if clearDB {
		if _, err := db.Exec(`
DROP TABLE IF EXISTS stop;
DROP TABLE IF EXISTS route;
DROP TABLE IF EXISTS stop_time;
DROP TABLE IF EXISTS station_metadata;
`); err != nil {
			return nil, fmt.Errorf("clearing postgres schema: %w", err)
		}
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("creating postgres schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS stop (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    min_transfer_minutes INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS route (
    route_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    running_days TEXT NOT NULL,
    comfort DOUBLE PRECISION NOT NULL,
    fare_per_km DOUBLE PRECISION NOT NULL
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
    stop_code TEXT PRIMARY KEY,
    min_transfer_minutes INTEGER NOT NULL,
    descriptive TEXT NOT NULL
);
`

func (s *PostgresStore) Writer() (Writer, error) { return &postgresWriter{db: s.db}, nil }
func (s *PostgresStore) Reader() (Reader, error) { return &postgresReader{db: s.db}, nil }
func (s *PostgresStore) Close() error            { return s.db.Close() }

type postgresWriter struct {
	db          *sql.DB
	stopTimeBuf []model.StopTimeRecord
}

func (w *postgresWriter) WriteStop(rec model.StopRecord) error {
	_, err := w.db.Exec(`
INSERT INTO stop (code, name, min_transfer_minutes) VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET name = $2, min_transfer_minutes = $3`,
		rec.Code, rec.Name, rec.MinTransferMinutes)
	return err
}

func (w *postgresWriter) WriteRoute(rec model.RouteRecord) error {
	_, err := w.db.Exec(`
INSERT INTO route (route_id, name, running_days, comfort, fare_per_km) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (route_id) DO UPDATE SET name = $2, running_days = $3, comfort = $4, fare_per_km = $5`,
		rec.ID, rec.Name, model.FormatRunningDays(rec.RunningDays), rec.Comfort, rec.FarePerKm)
	return err
}

func (w *postgresWriter) WriteStationMetadata(rec model.StationMetadata) error {
	_, err := w.db.Exec(`
INSERT INTO station_metadata (stop_code, min_transfer_minutes, descriptive) VALUES ($1, $2, $3)
ON CONFLICT (stop_code) DO UPDATE SET min_transfer_minutes = $2, descriptive = $3`,
		rec.StopCode, rec.MinTransferMinutes, model.FormatDescriptive(rec.Descriptive))
	return err
}

// BeginStopTimes starts buffering; the buffer is flushed via
// pq.CopyIn in EndStopTimes, the same bulk-load shape as the
// teacher's flushTrips/flushStopTimes.
func (w *postgresWriter) BeginStopTimes() error {
	w.stopTimeBuf = nil
	return nil
}

func (w *postgresWriter) WriteStopTime(rec model.StopTimeRecord) error {
	w.stopTimeBuf = append(w.stopTimeBuf, rec)
	return nil
}

func (w *postgresWriter) EndStopTimes() error {
	if len(w.stopTimeBuf) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("starting stop_time transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stop_time WHERE route_id = ANY($1)`, pq.Array(routeIDs(w.stopTimeBuf))); err != nil {
		return fmt.Errorf("clearing prior stop_time rows: %w", err)
	}

	stmt, err := tx.Prepare(pq.CopyIn("stop_time", "route_id", "stop_code", "position", "arrival", "departure", "day_offset"))
	if err != nil {
		return fmt.Errorf("preparing stop_time COPY: %w", err)
	}
	defer stmt.Close()

	for _, rec := range w.stopTimeBuf {
		if _, err := stmt.Exec(rec.RouteID, rec.StopCode, rec.Position, nullableInt(rec.Arrival), nullableInt(rec.Departure), rec.DayOffset); err != nil {
			return fmt.Errorf("COPY stop_time: %w", err)
		}
	}
	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("flushing stop_time COPY: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stop_time load: %w", err)
	}

	w.stopTimeBuf = nil
	return nil
}

func (w *postgresWriter) Close() error { return nil }

func routeIDs(recs []model.StopTimeRecord) []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range recs {
		if !seen[r.RouteID] {
			seen[r.RouteID] = true
			ids = append(ids, r.RouteID)
		}
	}
	return ids
}

type postgresReader struct{ db *sql.DB }

func (r *postgresReader) Stops() ([]model.StopRecord, error) {
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

func (r *postgresReader) Routes() ([]model.RouteRecord, error) {
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

func (r *postgresReader) StopTimes() ([]model.StopTimeRecord, error) {
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

func (r *postgresReader) StationMetadata() ([]model.StationMetadata, error) {
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
