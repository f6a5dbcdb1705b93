package cmd

import (
	"github.com/spf13/cobra"
)

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check the page on a cron schedule until interrupted.",
	Long: `watch runs a check immediately and then on the given schedule.
The schedule accepts standard cron expressions and descriptors such as
"@every 30m" or "@hourly". It defaults to WATCH_SCHEDULE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, w, deps, err := setup()
		if err != nil {
			return err
		}
		defer deps.Close()

		schedule := cfg.WatchSchedule
		if cmd.Flags().Changed("schedule") {
			schedule = watchSchedule
		}
		return w.Watch(cmd.Context(), schedule)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule overriding WATCH_SCHEDULE")
	rootCmd.AddCommand(watchCmd)
}
