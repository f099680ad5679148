package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/lance13c/ytmon/internal/config"
	"github.com/lance13c/ytmon/internal/ui"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file",
	Long: `Write a config file holding the defaults plus any flags given, so later
runs need no arguments.

The file goes to .ytmon/config.yaml in the current directory, or to
$XDG_CONFIG_HOME/ytmon/config.yaml with --global.

Example:
  ytmon init --global --chrome-binary /usr/bin/google-chrome \
             --chromedriver /usr/local/bin/chromedriver \
             --user-data-dir ~/.config/ytmon/profile`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	registerMonitorFlags(initCmd)

	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	initCmd.Flags().Bool("global", false, "write to the user config directory")
}

func runInit(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())

	force, _ := cmd.Flags().GetBool("force")
	global, _ := cmd.Flags().GetBool("global")

	path := cfgFile
	if path == "" {
		if global {
			path = filepath.Join(xdg.ConfigHome, config.GlobalConfigDir, config.ConfigFileName)
		} else {
			path = filepath.Join(config.ConfigDirName, config.ConfigFileName)
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		console.Error("%s already exists (use --force to overwrite)", path)
		return &exitError{code: 1}
	}

	// Only defaults and flags; an existing file or YTMON_* env must not leak in.
	cfg := config.DefaultConfig()
	if err := applyFlags(cmd, cfg); err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}

	if err := config.NewLoader("", "").Save(cfg, path); err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}

	console.Success("✔ Wrote %s", path)
	if err := cfg.Validate(); err != nil {
		console.Warn("%v", err)
		fmt.Fprintln(cmd.OutOrStdout(), "Edit the file or pass the missing flags before running ytmon.")
	}
	return nil
}
