package cmd

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/parser"
)

var startCmd = &cobra.Command{
	Use:   "start [DURATION]",
	Short: "Start the active room's treatment timer",
	Long: `Start the active room's treatment timer.

With no duration the room's effective duration applies: the super-admin
override when one is enabled, the configured default otherwise. Refuses
to start when every treatment item is already logged today.

Examples:
  treatclock start
  treatclock start 20m
  treatclock start 1h30m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	var duration time.Duration
	if len(args) == 1 {
		parsed := parser.ParseDuration(args[0])
		if !parsed.Valid {
			return apperrors.NewUserErrorWithField("duration", args[0],
				"invalid duration", "Use forms like '15m', '900s' or '1h30m'.")
		}
		duration = parsed.Duration
	}

	timer, err := ctx.Engine.Start(roomID, duration)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(timer)
	}
	ctx.Formatter.Println(describeTimer(timer, ctx.Session.Today()))
	return nil
}
