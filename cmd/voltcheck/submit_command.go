package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voltcheck/internal/records"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <media-path>",
		Short: "Queue an image or video for background analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if _, err := os.Stat(source); err != nil {
				return fmt.Errorf("source media: %w", err)
			}
			kind, err := inferMediaKind(source)
			if err != nil {
				return err
			}

			store, err := records.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.NewSubmission(cmd.Context(), source, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s record %d (%s)\n", kind, item.ID, source)
			return nil
		},
	}
	return cmd
}
