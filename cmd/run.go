package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mathmaster/mathmaster/internal/app"
	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/session"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	// Log output would draw over the alternate screen, so it only goes to
	// MATHMASTER_LOG_FILE when that is set.
	log := logger.Nop()
	if path := os.Getenv("MATHMASTER_LOG_FILE"); path != "" {
		fileLog, err := logger.ToFile(os.Getenv("MATHMASTER_LOG_MODE"), path)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer fileLog.Sync()
		log = fileLog
	}
	eventRepo := st.EventRepo()

	provider, err := llm.NewProviderFromEnv(ctx, eventRepo, log)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}

	outDir, _ := cmd.Flags().GetString("out")
	deps := &screen.Deps{
		Generator: problemgen.New(provider, problemgen.ConfigFromEnv(), log),
		Renderer:  rendererFromEnv(log),
		Session:   session.New(uuid.NewString()),
		Events:    eventRepo,
		OutDir:    outDir,
		Model:     provider.ModelID(),
		Log:       log,
	}
	return app.Run(deps)
}
