package cmd

import (
	"fmt"
	"strings"

	"github.com/mathmaster/mathmaster/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryBatchEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query batches: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No batches recorded yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-4s  %-7s  %-34s  %-9s  %-8s  %s\n",
			"ID", "Timestamp", "Src", "Grade", "Topic", "Level", "Strategy", "OK/Req")
		fmt.Println(strings.Repeat("─", 110))
		for _, e := range events {
			topic := e.Topic
			if e.Subtopic != "" {
				topic += "/" + e.Subtopic
			}
			fmt.Printf("%-5d  %-19s  %-4s  %-7s  %-34s  %-9s  %-8s  %d/%d\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Source,
				e.Grade,
				truncate(topic, 34),
				e.Difficulty,
				e.Strategy,
				e.OKCount,
				e.Requested,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of batches to show")
}
