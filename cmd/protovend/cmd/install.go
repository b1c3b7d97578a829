package cmd

import (
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Lock new or changed dependencies and vendor everything",
	Long: `Pins every declared dependency that is new, changed or not yet pinned
to the tip of its branch, keeps existing pins for the rest, and rebuilds
third_party/protovend from .protovend.lock.

Dependencies that fail are left out of the lock; the others are still locked
and vendored, and the command exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		result, err := client.Install(cmd.Context())
		reportSync(result)
		if err != nil {
			return syncFailed(err)
		}

		nextSteps()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
