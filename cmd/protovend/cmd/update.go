package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [repo-url]",
	Short: "Move dependencies to the tip of their branches",
	Long: `Re-resolves every declared dependency, or only the given repository, to
the current tip of its branch, updates .protovend.lock and rebuilds
third_party/protovend. Other pins are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var url string
		if len(args) == 1 {
			url = args[0]
		}

		result, err := client.Update(cmd.Context(), url)
		reportSync(result)
		if err != nil {
			return syncFailed(err)
		}

		nextSteps()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
