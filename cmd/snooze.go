package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/treatclock/treatclock/internal/config"
	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/parser"
)

var (
	snoozeFlagFor   string
	snoozeFlagUntil string
)

var snoozeCmd = &cobra.Command{
	Use:   "snooze",
	Short: "Extend the active room's running timer",
	Long: `Extend the active room's running timer.

The timer keeps its identity and item associations; only the end time
moves and notifications are rescheduled for everyone in the room.

Examples:
  treatclock snooze
  treatclock snooze --for 10m
  treatclock snooze --until 3pm`,
	RunE: runSnooze,
}

func init() {
	snoozeCmd.Flags().StringVar(&snoozeFlagFor, "for", "",
		"Extension duration (default from config)")
	snoozeCmd.Flags().StringVar(&snoozeFlagUntil, "until", "",
		"Extend until a point in time, e.g. '3pm' or 'in 20 minutes'")
}

func runSnooze(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	extra := config.Global.Timer.SnoozeDuration
	switch {
	case snoozeFlagUntil != "":
		parsed := parser.ParseTimestamp(snoozeFlagUntil)
		if parsed.Error != nil {
			return apperrors.NewUserErrorWithField("until", snoozeFlagUntil,
				"could not parse timestamp", "Try '3pm', '14:30' or 'in 20 minutes'.")
		}
		extra = time.Until(parsed.Time)
		if extra <= 0 {
			return apperrors.NewUserErrorWithField("until", snoozeFlagUntil,
				"timestamp is in the past", "Pick a time after the current moment.")
		}
	case snoozeFlagFor != "":
		parsed := parser.ParseDuration(snoozeFlagFor)
		if !parsed.Valid {
			return apperrors.NewUserErrorWithField("for", snoozeFlagFor,
				"invalid duration", "Use forms like '5m' or '300s'.")
		}
		extra = parsed.Duration
	}

	timer, err := ctx.Engine.Snooze(roomID, extra)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(timer)
	}
	ctx.Formatter.Println(describeTimer(timer, ctx.Session.Today()))
	return nil
}
