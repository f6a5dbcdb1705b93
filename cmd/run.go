package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check the page once and exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(ctx context.Context) error {
	_, w, deps, err := setup()
	if err != nil {
		return err
	}
	defer deps.Close()

	_, err = w.RunOnce(ctx)
	return err
}
