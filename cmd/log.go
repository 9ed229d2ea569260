package cmd

import (
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log ITEM",
	Short: "Log an item as consumed today",
	Long: `Log an item as consumed today in the active room.

Logging a treatment item while no timer is running starts the room's
shared timer. Logging the last unlogged treatment item stops a running
timer; there is nothing left for it to gate.`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

var unlogCmd = &cobra.Command{
	Use:   "unlog ITEM",
	Short: "Remove today's log entry for an item",
	Long: `Remove today's log entry for an item in the active room.

Un-logging a treatment item can re-open the qualifying set; if no timer
is running one is started.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlog,
}

func runLog(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	item, err := ctx.ItemRepo.FindByName(roomID, args[0])
	if err != nil {
		return err
	}

	if _, err := ctx.DoseLogRepo.Log(roomID, item.ID, ctx.Profile.UserID, ctx.Session.Today()); err != nil {
		return err
	}

	ctx.Engine.LogsChanged(roomID, item)

	ctx.Formatter.Printf("Logged %q\n", item.Name)
	if timer := ctx.Engine.Timer(roomID); timer != nil {
		ctx.Formatter.Println(describeTimer(timer, ctx.Session.Today()))
	}
	return nil
}

func runUnlog(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	item, err := ctx.ItemRepo.FindByName(roomID, args[0])
	if err != nil {
		return err
	}

	if err := ctx.DoseLogRepo.Unlog(roomID, item.ID, ctx.Session.Today()); err != nil {
		return err
	}

	ctx.Engine.LogsChanged(roomID, item)

	ctx.Formatter.Printf("Unlogged %q\n", item.Name)
	return nil
}
