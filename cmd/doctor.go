package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lance13c/ytmon/internal/browser"
	"github.com/lance13c/ytmon/internal/config"
	"github.com/lance13c/ytmon/internal/procs"
	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify ytmon configuration and Chrome connectivity",
	Long: `Doctor runs health checks on your ytmon configuration.

This command will:
• Load the config file and environment overrides
• Validate required settings
• Check that Chrome and ChromeDriver exist
• Probe the Chrome remote debugging port
• Report the track log location

Doctor never launches or terminates Chrome.

Example:
  ytmon doctor --chrome-binary /usr/bin/google-chrome --chromedriver /usr/local/bin/chromedriver --user-data-dir /tmp/ytmon`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	registerMonitorFlags(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🏥 ytmon Health Check")
	fmt.Fprintln(out, "====================")
	fmt.Fprintln(out)

	fmt.Fprint(out, "📄 Loading configuration... ")
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(out, "❌ FAILED")
		fmt.Fprintf(out, "   Error loading config: %v\n", err)
		return &exitError{code: 1}
	}
	fmt.Fprintln(out, "✅ PASSED")
	if path := config.NewLoader("", cfgFile).ConfigPath(); path != "" {
		fmt.Fprintf(out, "   File: %s\n", path)
	} else {
		fmt.Fprintln(out, "   No config file found; using defaults")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if ok := doctorChecks(ctx, out, cfg); !ok {
		fmt.Fprintln(out, "\n"+strings.Repeat("=", 40))
		fmt.Fprintln(out, "⚠️  Some checks failed. Please address the issues above.")
		return &exitError{code: 1}
	}

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(out, "🎉 All checks passed! ytmon is ready to use.")
	return nil
}

func doctorChecks(ctx context.Context, out io.Writer, cfg *config.Config) bool {
	allPassed := true

	fmt.Fprint(out, "🔍 Validating configuration... ")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(out, "❌ FAILED")
		fmt.Fprintf(out, "   Configuration error: %v\n", err)
		allPassed = false
	} else {
		fmt.Fprintln(out, "✅ PASSED")
	}

	fmt.Fprint(out, "📁 Checking executables... ")
	if errs := cfg.ValidatePaths(); len(errs) > 0 {
		fmt.Fprintln(out, "❌ FAILED")
		for _, err := range errs {
			fmt.Fprintf(out, "   %v\n", err)
		}
		allPassed = false
	} else {
		fmt.Fprintln(out, "✅ PASSED")
	}

	// A closed port is expected when ytmon is not running.
	fmt.Fprintf(out, "🌐 Probing debugger at %s... ", cfg.DebuggerAddr())
	if v, err := browser.GetVersion(ctx, cfg.DebuggerAddr()); err != nil {
		fmt.Fprintln(out, "⚠️  NOT RUNNING")
		fmt.Fprintln(out, "   Chrome is not listening; ytmon will launch it.")
	} else {
		fmt.Fprintln(out, "✅ RUNNING")
		fmt.Fprintf(out, "   Browser: %s\n", v.Browser)
		if targets, err := browser.ListTargets(ctx, cfg.DebuggerAddr()); err == nil {
			fmt.Fprintf(out, "   Open targets: %d\n", len(targets))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "📊 Current Configuration:")
	fmt.Fprintf(out, "   Backend: %s\n", cfg.Driver.Backend)
	fmt.Fprintf(out, "   Debug port: %d\n", cfg.Chrome.DebugPort)
	if cfg.Driver.Backend == config.BackendWebDriver {
		fmt.Fprintf(out, "   Driver port: %d\n", cfg.Driver.Port)
	}
	fmt.Fprintf(out, "   Start URL: %s\n", cfg.Chrome.StartURL)
	fmt.Fprintf(out, "   Track log: %s\n", cfg.LogFile)
	if cfg.Cleanup.Enabled {
		names := cfg.Cleanup.ProcessNames
		if len(names) == 0 {
			names = procs.DefaultNames()
		}
		fmt.Fprintf(out, "   Cleanup: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(out, "   Cleanup: disabled")
	}

	return allPassed
}
