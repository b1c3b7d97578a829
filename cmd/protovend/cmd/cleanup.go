package cmd

import (
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete the repository cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		size, err := client.CacheSize()
		if err != nil {
			errorf("measuring cache: %s", err)
		}
		if err := client.Cleanup(); err != nil {
			return err
		}
		info("Removed %s (%s)", client.CachePath(), humanSize(size))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
