// Package cmd provides the CLI commands for Treatclock.
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/output"
	"github.com/treatclock/treatclock/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "treatclock",
	Short: "Shared treatment timers for food tolerance induction programs",
	Long: `Treatclock keeps a household's treatment timers in sync.

Log a dose and the room's timer starts. Everyone watching the room sees
the same countdown, gets the same done notification, and the last timer
to finish wins when two devices disagree.

Examples:
  treatclock room create "Evening doses"
  treatclock item add peanut --category treatment
  treatclock log peanut
  treatclock status --live
  treatclock snooze --for 10m`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		// Parse format flag
		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		// Parse color flag
		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show current status
		return runStatus(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(roomCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(unlogCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("treatclock %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// requireRoom returns the active room ID or ErrRoomRequired.
func requireRoom() (string, error) {
	roomID := ctx.Session.CurrentRoomID()
	if roomID == "" {
		return "", apperrors.ErrRoomRequired
	}
	return roomID, nil
}

// Die prints an error and exits.
func Die(err error) {
	var ue *apperrors.UserError
	if errors.As(err, &ue) && ue.Suggestion != "" {
		os.Stderr.WriteString("Error: " + ue.Message + "\n" + ue.Suggestion + "\n")
	} else {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
	}
	os.Exit(1)
}
