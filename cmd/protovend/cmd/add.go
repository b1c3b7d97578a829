package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/pkg/protovend"
)

var (
	addBranch        string
	addProtoDir      string
	addProtoPaths    []string
	addFilenameRegex string
	addResolve       bool
)

var addCmd = &cobra.Command{
	Use:   "add <repo-url>",
	Short: "Declare a repository to vendor from",
	Long: `Adds a repository to .protovend.yml. Adding a repository that is already
declared merges the new proto paths into its entry and replaces its branch,
proto directory, filter and reference setting.

Without --proto-path the repository's owner/name, lowercased and stripped of
punctuation, is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		result, err := client.Add(protovend.AddOptions{
			URL:               args[0],
			Branch:            addBranch,
			ProtoDir:          addProtoDir,
			ProtoPaths:        addProtoPaths,
			FilenameRegex:     addFilenameRegex,
			ResolveDependency: addResolve,
		})
		if err != nil {
			return err
		}

		dep := result.Dependency
		switch {
		case result.Outcome.New:
			info("Added %s (branch %s)", dep.URL, dep.Branch)
		case result.Outcome.Changed():
			info("Updated %s (branch %s)", dep.URL, dep.Branch)
		default:
			info("%s is already declared as requested", dep.URL)
			return nil
		}
		detail("proto_dir:   %s", dep.ProtoDir)
		detail("proto_paths: %s", strings.Join(dep.ProtoPaths, ", "))
		detail("filter:      %s", dep.FilenameRegex)
		info("Run 'protovend install' to lock and vendor it.")
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addBranch, "branch", config.DefaultBranch, "branch to track")
	addCmd.Flags().StringVar(&addProtoDir, "proto-dir", config.DefaultProtoDir, "directory in the repository that holds the protos")
	addCmd.Flags().StringArrayVar(&addProtoPaths, "proto-path", nil, "path under --proto-dir to vendor (repeatable)")
	addCmd.Flags().StringVar(&addFilenameRegex, "filename-regex", config.DefaultFilenameRegex, "only vendor files whose name without .proto matches")
	addCmd.Flags().BoolVar(&addResolve, "resolve-dependency", false, "also vendor files imported by the selected files")
	rootCmd.AddCommand(addCmd)
}
