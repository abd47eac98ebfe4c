package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/mathmaster/mathmaster/internal/selfupdate"
	"github.com/spf13/cobra"
)

const updateTimeout = 2 * time.Minute

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update mathmaster to the latest version",
	Example: `  mathmaster update
  mathmaster update --version v1.2.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("version")

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(updateTimeout))
		ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
		defer cancel()

		err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
		}, func(p selfupdate.UpdateProgress) {
			fmt.Println(p.Message)
		})

		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Printf("Already running the latest version (%s).\n", version)
			return nil
		case errors.Is(err, fs.ErrPermission):
			return fmt.Errorf("%w\n\nTry running: sudo mathmaster update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().String("version", "", "Install this release tag instead of the latest")
}
