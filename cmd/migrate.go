package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the task table and its search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		a.logger.Info("migration complete", "table", a.cfg.DatabaseTable)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
