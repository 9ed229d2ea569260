package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/output"
	"github.com/treatclock/treatclock/internal/parser"
	"github.com/treatclock/treatclock/internal/remote"
)

var (
	overrideFlagEnable  bool
	overrideFlagDisable bool
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage the room's timer duration override",
}

var overrideShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active room's duration override",
	RunE:  runOverrideShow,
}

var overrideSetCmd = &cobra.Command{
	Use:   "set [DURATION]",
	Short: "Set the active room's duration override",
	Long: `Set the active room's duration override. Super admins only.

An enabled override replaces the default timer duration for every
member of the room. Already-running timers are unaffected; the override
applies from the next start.

Examples:
  treatclock override set 60s
  treatclock override set 30m --enable
  treatclock override set --disable`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOverrideSet,
}

func init() {
	overrideSetCmd.Flags().BoolVar(&overrideFlagEnable, "enable", false,
		"Enable the override")
	overrideSetCmd.Flags().BoolVar(&overrideFlagDisable, "disable", false,
		"Disable the override, keeping its duration")

	overrideCmd.AddCommand(overrideShowCmd)
	overrideCmd.AddCommand(overrideSetCmd)
}

func runOverrideShow(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	override, err := remote.NewOverrideMirror(ctx.Remote, roomID).Get()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(override)
	}

	state := "disabled"
	if override.Enabled {
		state = "enabled"
	}
	ctx.Formatter.Printf("Override %s, duration %s\n",
		state, output.FormatDuration(override.EffectiveDuration()))
	return nil
}

func runOverrideSet(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	room, err := ctx.Session.Room(roomID)
	if err != nil {
		return err
	}
	if !room.IsSuperAdmin(ctx.Profile.UserID) {
		return apperrors.ErrNotSuperAdmin
	}

	mirror := remote.NewOverrideMirror(ctx.Remote, roomID)
	override, err := mirror.Get()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		parsed := parser.ParseDuration(args[0])
		if !parsed.Valid || parsed.Duration <= 0 {
			return apperrors.ErrInvalidDuration
		}
		override.DurationSeconds = int(parsed.Duration.Seconds())
		override.Enabled = true
	}

	if overrideFlagEnable {
		override.Enabled = true
	}
	if overrideFlagDisable {
		override.Enabled = false
	}

	if err := mirror.Set(override); err != nil {
		return err
	}

	state := "disabled"
	if override.Enabled {
		state = "enabled"
	}
	ctx.Formatter.Printf("Override %s, duration %s\n",
		state, output.FormatDuration(override.EffectiveDuration()))
	return nil
}
