package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/lance13c/ytmon/internal/tracklog"
	"github.com/lance13c/ytmon/internal/ui"
	"github.com/spf13/cobra"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the track log",
	Long: `Print tracks as they are appended to the track log. Useful in a second
terminal while ytmon is monitoring.

Example:
  ytmon tail --all`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().String("log-file", "", "track log file (default from config)")
	tailCmd.Flags().BoolP("all", "a", false, "print existing entries before following")
}

func runTail(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())

	cfg, err := loadConfig(cmd)
	if err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}
	all, _ := cmd.Flags().GetBool("all")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := tracklog.NewFile(cfg.LogFile)
	console.Muted("Following %s (Ctrl+C to exit)...", log.Path())
	err = log.Follow(ctx, all, func(t tracklog.Track) {
		console.NowPlaying(t.Artist, t.Title)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		console.Error("%v", err)
		return &exitError{code: 1}
	}
	return nil
}
