package cmd

import (
	"fmt"

	"github.com/lance13c/ytmon/internal/tracklog"
	"github.com/lance13c/ytmon/internal/ui"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the recorded tracks",
	Long: `Print the tracks recorded in the track log, oldest first.

Example:
  ytmon history --limit 20`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("log-file", "", "track log file (default from config)")
	historyCmd.Flags().IntP("limit", "n", 0, "show only the last N tracks (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())

	cfg, err := loadConfig(cmd)
	if err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		console.Error("--limit cannot be negative")
		return &exitError{code: 1}
	}

	tracks, err := tracklog.NewFile(cfg.LogFile).ReadAll()
	if err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}
	if len(tracks) == 0 {
		console.Muted("No tracks recorded in %s", cfg.LogFile)
		return nil
	}

	start := 0
	if limit > 0 && limit < len(tracks) {
		start = len(tracks) - limit
	}
	for i := start; i < len(tracks); i++ {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", i+1, tracks[i])
	}
	return nil
}
