package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"raptor.dev/transit/transit"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Finds Pareto-optimal journeys between two stops",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

var (
	fromCode     string
	toCode       string
	serviceDate  string
	departHHMM   string
	maxTransfers int
)

func init() {
	queryCmd.Flags().StringVarP(&fromCode, "from", "", "", "source stop code")
	queryCmd.Flags().StringVarP(&toCode, "to", "", "", "destination stop code")
	queryCmd.Flags().StringVarP(&serviceDate, "date", "", "", "service date, YYYY-MM-DD")
	queryCmd.Flags().StringVarP(&departHHMM, "depart", "", "", "earliest departure time, HH:MM")
	queryCmd.Flags().IntVarP(&maxTransfers, "max-transfers", "", 4, "maximum number of transfers to consider")

	queryCmd.MarkFlagRequired("from")
	queryCmd.MarkFlagRequired("to")
	queryCmd.MarkFlagRequired("date")
	queryCmd.MarkFlagRequired("depart")
}

func runQuery(cmd *cobra.Command, args []string) error {
	idx, err := LoadIndex()
	if err != nil {
		return err
	}

	engine := transit.NewEngine(idx)
	itineraries, err := engine.SearchJourneys(context.Background(), transit.Request{
		SourceCode:      fromCode,
		DestCode:        toCode,
		ServiceDate:     serviceDate,
		EarliestDepHHMM: departHHMM,
		MaxTransfers:    maxTransfers,
	})
	if err != nil {
		return err
	}

	for i, it := range itineraries {
		fmt.Printf("itinerary %d: %d transfer(s), %d min, comfort %.1f, fare %.2f\n",
			i+1, it.Transfers, it.TotalTime, it.Comfort, it.TotalFare)
		for _, seg := range it.Segments {
			dep, arr := "?", "?"
			if seg.Departure != nil {
				dep = formatAbsMinute(*seg.Departure)
			}
			if seg.Arrival != nil {
				arr = formatAbsMinute(*seg.Arrival)
			}
			fmt.Printf("  route %d: stop %d (%s) -> stop %d (%s)\n", seg.Route, seg.BoardStop, dep, seg.AlightStop, arr)
		}
	}

	return nil
}

func formatAbsMinute(m int) string {
	day := m / 1440
	minuteOfDay := m % 1440
	if minuteOfDay < 0 {
		minuteOfDay += 1440
	}
	hh, mm := minuteOfDay/60, minuteOfDay%60
	if day != 0 {
		return fmt.Sprintf("%02d:%02d+%dd", hh, mm, day)
	}
	return fmt.Sprintf("%02d:%02d", hh, mm)
}
