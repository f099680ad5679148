package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/lance13c/ytmon/internal/config"
	"github.com/lance13c/ytmon/internal/logging"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd launches the browser and monitors playback when run without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "ytmon",
	Short: "ytmon - YouTube Music now-playing logger",
	Long: `ytmon launches Chrome with remote debugging enabled, attaches a
WebDriver session to it and records every track you play on YouTube Music.

Each newly detected track is printed and appended to the track log as one
"title|artist" line. Log in and start playback in the launched window, then
press ENTER to begin monitoring. Ctrl+C stops monitoring and releases the
browser session.

Example:
  ytmon --chrome-binary /usr/bin/google-chrome \
        --chromedriver /usr/local/bin/chromedriver \
        --user-data-dir ~/.config/ytmon/profile`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMonitor,
}

// exitError carries a process exit status out of a command whose failure
// has already been reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	logging.GetLogger().Close()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ytmon/config.yaml, then $XDG_CONFIG_HOME/ytmon/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "verbose output")

	registerMonitorFlags(rootCmd)
}

// initConfig sets up diagnostics logging before any command runs.
func initConfig() {
	if err := logging.Initialize(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logging: %v\n", err)
	} else {
		logging.RedirectStandardLog()
	}

	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		logging.GetLogger().SetLevel(logging.DEBUG)
		logging.Debug("diagnostics written to %s", logging.GetLogger().GetLogPath())
	}
}

// loadConfig returns defaults < config file < YTMON_* env < explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader("", cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
