package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of problems and export it to PDF",
	Example: `  mathmaster generate --grade grade7 --topic linear-equations --count 3
  mathmaster generate --grade hs1 --topic quadratic-functions --difficulty applied --strategy planned --out ./sheets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		noPDF, _ := cmd.Flags().GetBool("no-pdf")

		log, err := cliLogger()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		var renderer *render.Renderer
		if !noPDF {
			renderer = rendererFromEnv(log)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		eventRepo := st.EventRepo()
		provider, err := llm.NewProviderFromEnv(ctx, eventRepo, log)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		gen := problemgen.New(provider, problemgen.ConfigFromEnv(), log)
		if s, _ := cmd.Flags().GetString("strategy"); s != "" {
			strategy, ok := problemgen.ParseStrategy(s)
			if !ok {
				return fmt.Errorf("unknown strategy %q (want direct or planned)", s)
			}
			gen = gen.WithStrategy(strategy)
		}

		fmt.Printf("%s  %d問  (%s)\n", req.Title(), req.Count, provider.ModelID())
		set := problemset.New()
		sum, err := gen.Run(ctx, req, set, func(p problemgen.Progress) {
			fmt.Printf("  [%d/%d] 問題 %d %s\n", p.Done, p.Total, p.Item.ID, statusMark(p.Item.Status))
		})
		if err != nil {
			return err
		}
		if err := eventRepo.AppendBatchEvent(context.Background(), sum.Event("cli", req)); err != nil {
			log.Warn("record batch", "error", err)
		}

		fmt.Println()
		printItems(set.Items())
		fmt.Printf("成功 %d  形式不正 %d  失敗 %d  (%s)\n", sum.OK, sum.Malformed, sum.Failed, sum.Duration.Round(100*time.Millisecond))

		if renderer == nil {
			return nil
		}
		return writePDFs(renderer, set.Items(), req.Title(), outDir)
	},
}

func requestFromFlags(cmd *cobra.Command) (problemgen.Request, error) {
	gradeFlag, _ := cmd.Flags().GetString("grade")
	topic, _ := cmd.Flags().GetString("topic")
	subtopic, _ := cmd.Flags().GetString("subtopic")
	difficultyFlag, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	theme, _ := cmd.Flags().GetString("theme")

	grade, ok := curriculum.ParseGrade(gradeFlag)
	if !ok {
		return problemgen.Request{}, fmt.Errorf("unknown grade %q (see mathmaster catalog)", gradeFlag)
	}
	difficulty, ok := problemgen.ParseDifficulty(difficultyFlag)
	if !ok {
		return problemgen.Request{}, fmt.Errorf("unknown difficulty %q", difficultyFlag)
	}
	return problemgen.Request{
		Grade:      grade,
		Topic:      topic,
		Subtopic:   subtopic,
		Difficulty: difficulty,
		Count:      count,
		Theme:      theme,
	}, nil
}

func statusMark(s problemset.Status) string {
	switch s {
	case problemset.StatusMalformed:
		return "△ 解答の区切りなし"
	case problemset.StatusFailed:
		return "✗ 失敗"
	}
	return "✓"
}

func printItems(items []problemset.Item) {
	sep := strings.Repeat("─", 60)
	for _, it := range items {
		fmt.Println(sep)
		fmt.Printf("問題 %d\n\n%s\n\n", it.ID, it.Problem)
		fmt.Printf("解答 %d\n\n%s\n", it.ID, it.Solution)
	}
	fmt.Println(sep)
}

// writePDFs writes the problem sheet and the answer key. A failed export
// is reported and the other one is still attempted.
func writePDFs(r *render.Renderer, items []problemset.Item, title, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var errs []error
	for _, mode := range []render.Mode{render.ModeProblems, render.ModeSolutions} {
		art, err := r.Render(items, title, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", mode.Filename(), err))
			continue
		}
		path := filepath.Join(dir, art.Filename)
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		fmt.Printf("%s (%dページ)\n", path, art.Pages)
	}
	return errors.Join(errs...)
}

func init() {
	f := generateCmd.Flags()
	f.String("grade", string(curriculum.Grade7), "Grade ID or name (grade7, grade8, grade9, hs1)")
	f.String("topic", "", "Topic ID or name")
	f.String("subtopic", "", "Optional sub-topic ID or name")
	f.String("difficulty", string(problemgen.DifficultyStandard), "basic, standard, applied or advanced")
	f.IntP("count", "n", 3, fmt.Sprintf("Number of problems (1-%d)", problemgen.MaxCount))
	f.String("strategy", "", "direct or planned (overrides MATHMASTER_STRATEGY)")
	f.String("theme", "", "Optional theme applied to every problem")
	f.StringP("out", "o", ".", "Directory for problems.pdf and solutions.pdf")
	f.Bool("no-pdf", false, "Print the problems without writing PDFs")
	_ = generateCmd.MarkFlagRequired("topic")
}
