package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/lock"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .protovend.yml and .protovend.lock",
	Long: `Creates an empty .protovend.yml and .protovend.lock in the project
directory, stamped with the running protovend version. Existing files are
left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		result, err := client.Init()
		if err != nil {
			return err
		}

		if !result.ConfigCreated && !result.LockCreated {
			info("Project already initialised in %s", client.ProjectRoot())
			return nil
		}
		if result.ConfigCreated {
			info("Created %s", config.FileName)
		}
		if result.LockCreated {
			info("Created %s", lock.FileName)
		}
		info("")
		info("Next steps:")
		info("  1. Run 'protovend add <repo-url>' to declare a dependency")
		info("  2. Run 'protovend install' to lock and vendor it")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
