package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/treatclock/treatclock/internal/output"
	"github.com/treatclock/treatclock/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in the foreground, reacting to the room's shared timer",
	Long: `Run in the foreground, reacting to the room's shared timer.

While watching, remote timer changes from other devices are adopted as
they happen, periodic reconciliation repairs drift, queued webhook
deliveries are retried, and timer completion is announced on stdout.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx.Dispatcher.StartQueue()

	sched := scheduler.New(ctx.Engine, ctx.Session)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	ctx.Formatter.Printf("Watching room %s. Ctrl-C to stop.\n", ctx.Session.RoomName(roomID))

	for {
		select {
		case <-sigCtx.Done():
			ctx.Formatter.Println("\nStopped watching.")
			return nil
		case ev := <-ctx.Engine.Expired():
			ctx.Formatter.Printf("Timer done in %s (ended %s)\n",
				ctx.Session.RoomName(ev.RoomID), output.FormatTime(ev.Timer.EndTime))
		}
	}
}
