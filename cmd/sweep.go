package cmd

import (
	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/services"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reopen recurring tasks that are due, then exit",
	Long:  "Runs the recurrence sweep once. Meant for an external cron when the in-process schedule is off.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		sweep := services.NewSweepService(a.repo, services.SystemClock(a.cfg.Location), a.logger)
		_, err = sweep.Run(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
