package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/store"
	"github.com/spf13/cobra"
)

const ruleWidth = 100

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded completion calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent completion calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.BatchID, _ = cmd.Flags().GetString("batch")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No completion calls found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-11s  %-26s  %-8s  %6s  %6s  %7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "Batch", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", ruleWidth))
		for _, e := range events {
			fmt.Printf("%-5d  %-19s  %-11s  %-26s  %-8s  %6d  %6d  %7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 26),
				truncate(e.BatchID, 8),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				okMark(e.Success),
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and completion of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("call %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		fields := [][2]string{
			{"ID", strconv.FormatInt(e.Sequence, 10)},
			{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Batch", e.BatchID},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", strconv.FormatBool(e.Success)},
			{"Error", e.ErrorMessage},
		}
		for _, f := range fields {
			if f[1] != "" {
				fmt.Printf("%-10s %s\n", f[0]+":", f[1])
			}
		}
		if cost, ok := llm.EstimateCost(e.Model, e.InputTokens, e.OutputTokens); ok {
			fmt.Printf("%-10s %s\n", "Cost:", formatCost(cost))
		}

		printSection("REQUEST", e.RequestBody)
		printSection("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No completion calls recorded yet.")
			return nil
		}
		printPurposeUsage(byPurpose)

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) > 0 {
			fmt.Println()
			printModelCost(byModel)
		}
		return nil
	},
}

func printPurposeUsage(rows []store.LLMUsage) {
	rule := strings.Repeat("─", 80)
	fmt.Println("Usage by Purpose")
	fmt.Println(rule)
	fmt.Printf("%-14s  %6s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
	fmt.Println(rule)

	var calls, failed int
	var in, out int64
	for _, u := range rows {
		fmt.Printf("%-14s  %6d  %6d  %10d  %10d  %10d  %8.0f\n",
			u.Key, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		failed += u.Failures
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Println(rule)
	fmt.Printf("%-14s  %6d  %6d  %10d  %10d  %10d\n", "TOTAL", calls, failed, in, out, in+out)
}

func printModelCost(rows []store.LLMUsage) {
	rule := strings.Repeat("─", 80)
	fmt.Println("Estimated Cost (USD)")
	fmt.Println(rule)
	fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule)

	var total float64
	var unpriced []string
	for _, u := range rows {
		cost := "?"
		if c, ok := llm.EstimateCost(u.Key, int(u.InputTokens), int(u.OutputTokens)); ok {
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Key)
		}
		fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n", truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Println(rule)

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func printSection(title, body string) {
	rule := strings.Repeat("─", 60)
	fmt.Println()
	fmt.Println(rule)
	fmt.Println(title)
	fmt.Println(rule)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (problem-gen, theme-plan, follow-up)")
	llmListCmd.Flags().String("batch", "", "Show only the calls of one batch")
	llmListCmd.Flags().Duration("since", 0, "Show only calls newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
