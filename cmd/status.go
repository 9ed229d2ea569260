package cmd

import (
	"github.com/spf13/cobra"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/tui"
)

var statusFlagLive bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active room's timer",
	Long: `Show the active room's timer after reconciling the local snapshot
against the shared record.

With --live a full-screen countdown stays on screen until the timer
ends or you quit.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlagLive, "live", false,
		"Show a live countdown")
}

func runStatus(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	timer, err := ctx.Engine.Reconcile(roomID)
	if err != nil {
		return err
	}

	if statusFlagLive {
		return tui.RunCountdown(func() *model.TreatmentTimer {
			return ctx.Engine.Timer(roomID)
		})
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(model.TimerState{Timer: timer})
	}

	ctx.Formatter.Printf("Room: %s\n", ctx.Session.RoomName(roomID))
	ctx.Formatter.Println(describeTimer(timer, ctx.Session.Today()))

	unlogged, err := ctx.Session.QualifyingItemsForToday(roomID)
	if err == nil {
		ctx.Formatter.Printf("Unlogged treatment items today: %d\n", len(unlogged))
	}
	return nil
}
