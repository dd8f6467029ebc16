// Command raptor is the CLI front end over the transit package: pick
// one index source (CSV directory, SQLite cache, or Postgres cache)
// with a persistent flag, then run a query subcommand against it.
// Grounded on the teacher's cmd/main.go root-command-plus-flags shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"raptor.dev/transit/loader"
	"raptor.dev/transit/storage"
	"raptor.dev/transit/timetable"
)

var rootCmd = &cobra.Command{
	Use:          "raptor",
	Short:        "Multi-criteria transit journey planner",
	Long:         "Runs RAPTOR journey queries against a built timetable index",
	SilenceUsage: true,
}

var (
	csvDir      string
	sqlitePath  string
	postgresDSN string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&csvDir, "csv-dir", "", "", "directory of stop/route/stop_time/station_metadata CSV files")
	rootCmd.PersistentFlags().StringVarP(&sqlitePath, "sqlite-path", "", "", "directory holding the SQLite cache (raptor.db) of the boundary tables")
	rootCmd.PersistentFlags().StringVarP(&postgresDSN, "postgres-dsn", "", "", "connection string for a Postgres cache of the boundary tables")
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// LoadIndex builds a timetable.Index from whichever of --csv-dir,
// --sqlite-path, --postgres-dsn was given, per SPEC_FULL.md §4.7.
// Exactly one must be set.
func LoadIndex() (*timetable.Index, error) {
	sources := 0
	for _, s := range []string{csvDir, sqlitePath, postgresDSN} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of --csv-dir, --sqlite-path, --postgres-dsn is required")
	}

	var builder *timetable.Builder
	var err error

	switch {
	case csvDir != "":
		builder, err = loadFromCSVDir(csvDir)
	case sqlitePath != "":
		builder, err = loadFromStore(func() (storage.Store, error) {
			return storage.NewSQLiteStore(storage.SQLiteConfig{OnDisk: true, Directory: sqlitePath})
		})
	case postgresDSN != "":
		builder, err = loadFromStore(func() (storage.Store, error) {
			return storage.NewPostgresStore(postgresDSN, false)
		})
	}
	if err != nil {
		return nil, err
	}

	return builder.Build()
}

func loadFromCSVDir(dir string) (*timetable.Builder, error) {
	stops, err := os.Open(dir + "/stops.csv")
	if err != nil {
		return nil, fmt.Errorf("opening stops.csv: %w", err)
	}
	defer stops.Close()

	routes, err := os.Open(dir + "/routes.csv")
	if err != nil {
		return nil, fmt.Errorf("opening routes.csv: %w", err)
	}
	defer routes.Close()

	stopTimes, err := os.Open(dir + "/stop_times.csv")
	if err != nil {
		return nil, fmt.Errorf("opening stop_times.csv: %w", err)
	}
	defer stopTimes.Close()

	var metadata *os.File
	if f, err := os.Open(dir + "/station_metadata.csv"); err == nil {
		metadata = f
		defer metadata.Close()
	}

	tables := loader.Tables{Stops: stops, Routes: routes, StopTimes: stopTimes}
	if metadata != nil {
		tables.StationMetadata = metadata
	}

	return loader.LoadCSV(tables)
}

func loadFromStore(open func() (storage.Store, error)) (*timetable.Builder, error) {
	s, err := open()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	return loader.LoadFromStore(s)
}
