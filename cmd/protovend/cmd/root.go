package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/protovend/internal/logging"
	"github.com/bianoble/protovend/internal/settings"
	"github.com/bianoble/protovend/internal/version"
)

// Global flags.
var (
	projectDir    string
	cacheDir      string
	settingsPath  string
	verbosity     int
	quiet         bool
	noColor       bool
	packageLayout bool
)

// appSettings is loaded before any command runs.
var appSettings *settings.Settings

var rootCmd = &cobra.Command{
	Use:   "protovend",
	Short: "Vendor .proto files from git repositories",
	Long: `protovend copies .proto files from remote git repositories into
third_party/protovend. Dependencies are declared in .protovend.yml and pinned
to commits in .protovend.lock, so every checkout vendors the same files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(settingsPath)
		if err != nil {
			return err
		}
		appSettings = s

		logging.Setup(logging.Options{
			Verbosity: verbosity,
			Format:    s.LogFormat,
			NoColor:   noColor || s.NoColor,
		})
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("protovend %s\n", version.Version)
		fmt.Printf("  commit:  %s\n", version.Commit)
		fmt.Printf("  built:   %s\n", version.Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", ".", "project directory containing .protovend.yml")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "repository cache directory (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "path to settings file (default $XDG_CONFIG_HOME/protovend/settings.toml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().BoolVar(&packageLayout, "check-packages", false, "require proto packages to match their directories")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
