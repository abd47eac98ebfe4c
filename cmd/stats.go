package cmd

import (
	"fmt"

	"github.com/mathmaster/mathmaster/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize generation outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryBatchEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query batches: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No batches recorded yet.")
			return nil
		}

		var requested, ok, malformed, failed int
		var totalMs int64
		bySource := make(map[string]int)
		for _, e := range events {
			requested += e.Requested
			ok += e.OKCount
			malformed += e.MalformedCount
			failed += e.FailedCount
			totalMs += e.DurationMs
			bySource[e.Source]++
		}

		fmt.Printf("Batches:    %d (cli %d, web %d, tui %d)\n",
			len(events), bySource["cli"], bySource["web"], bySource["tui"])
		fmt.Printf("Problems:   %d requested\n", requested)
		fmt.Printf("  ok        %d (%.0f%%)\n", ok, percent(ok, requested))
		fmt.Printf("  malformed %d (%.0f%%)\n", malformed, percent(malformed, requested))
		fmt.Printf("  failed    %d (%.0f%%)\n", failed, percent(failed, requested))
		fmt.Printf("Avg batch:  %.1fs\n", float64(totalMs)/float64(len(events))/1000)
		return nil
	},
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
