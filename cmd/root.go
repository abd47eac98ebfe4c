package cmd

import (
	"fmt"
	"os"

	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mathmaster",
	Short: "AI math worksheet generator",
	Long:  "mathmaster generates practice problems with worked solutions for Japanese secondary-school math and exports them to PDF.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHMASTER_DB env var)")
	rootCmd.Flags().String("out", ".", "Directory for exported PDFs")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHMASTER_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the audit database chosen by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// cliLogger only reports warnings unless MATHMASTER_LOG_MODE asks for
// full output.
func cliLogger() (*logger.Logger, error) {
	if os.Getenv("MATHMASTER_LOG_MODE") == "" {
		return logger.Quiet()
	}
	return logger.FromEnv()
}

// rendererFromEnv builds the PDF renderer and warns when exports cannot
// show Japanese text.
func rendererFromEnv(log *logger.Logger) *render.Renderer {
	cfg := render.ConfigFromEnv()
	if err := cfg.CheckFont(); err != nil {
		log.Warn("PDF export has no Japanese font; set MATHMASTER_PDF_FONT to a TrueType font with Japanese glyphs",
			"error", err)
	}
	return render.New(cfg)
}
