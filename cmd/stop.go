package cmd

import (
	"github.com/spf13/cobra"
)

var stopFlagLocal bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active room's treatment timer",
	Long: `Stop the active room's treatment timer.

By default the shared timer record is cleared, so every device in the
room sees the timer end. With --local only this device's notifications
and snapshot are dropped; the room's timer keeps running elsewhere.

Stopping when no timer is running is a no-op.`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopFlagLocal, "local", false,
		"Drop only this device's notifications and snapshot")
}

func runStop(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	if err := ctx.Engine.Stop(roomID, !stopFlagLocal); err != nil {
		return err
	}

	if stopFlagLocal {
		ctx.Formatter.Println("Dropped this device's timer state.")
	} else {
		ctx.Formatter.Println("Stopped the room's treatment timer.")
	}
	return nil
}
