package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/session"
	"github.com/mathmaster/mathmaster/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		idle, _ := cmd.Flags().GetDuration("session-idle")

		log, err := logger.FromEnv()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eventRepo := st.EventRepo()
		provider, err := llm.NewProviderFromEnv(ctx, eventRepo, log)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		srv := web.NewServer(web.Deps{
			Generator: problemgen.New(provider, problemgen.ConfigFromEnv(), log),
			Renderer:  rendererFromEnv(log),
			Sessions:  session.NewManager(idle),
			Events:    eventRepo,
			Log:       log,
		})
		log.Info("serving", "addr", addr, "model", provider.ModelID())
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("session-idle", session.DefaultIdleTimeout, "Drop sessions idle for longer than this")
}
