package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show declared dependencies and their pinned commits",
	Long: `Lists every dependency in .protovend.yml with the commit pinned in
.protovend.lock and its state (locked, unresolved, changed), plus lock
entries that are no longer declared (orphaned). Never touches the network.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		statuses, err := client.Status()
		if err != nil {
			return err
		}

		if len(statuses) == 0 {
			info("No dependencies declared.")
			return nil
		}

		fmt.Printf("%-50s %-10s %s\n", "REPOSITORY", "COMMIT", "STATE")
		for _, s := range statuses {
			commit := shortCommit(s.Commit)
			if commit == "" {
				commit = "-"
			}
			fmt.Printf("%-50s %-10s %s\n", s.URL, commit, s.State)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
