package cmd

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/output"
)

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Manage shared treatment rooms",
}

var roomCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a room and make it the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomCreate,
}

var roomJoinCmd = &cobra.Command{
	Use:   "join ROOM_ID",
	Short: "Join an existing room",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomJoin,
}

var roomLeaveCmd = &cobra.Command{
	Use:   "leave ROOM_ID",
	Short: "Leave a room",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomLeave,
}

var roomSwitchCmd = &cobra.Command{
	Use:   "switch ROOM_ID",
	Short: "Make a room the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomSwitch,
}

var roomListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known rooms",
	RunE:  runRoomList,
}

var roomNotifyCmd = &cobra.Command{
	Use:   "notify on|off",
	Short: "Toggle timer notifications for yourself in the active room",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomNotify,
}

func init() {
	roomCmd.AddCommand(roomCreateCmd)
	roomCmd.AddCommand(roomJoinCmd)
	roomCmd.AddCommand(roomLeaveCmd)
	roomCmd.AddCommand(roomSwitchCmd)
	roomCmd.AddCommand(roomListCmd)
	roomCmd.AddCommand(roomNotifyCmd)
}

func runRoomCreate(cmd *cobra.Command, args []string) error {
	room, err := ctx.RoomRepo.Create(args[0], ctx.Profile.UserID, ctx.Profile.Name)
	if err != nil {
		return err
	}

	if err := ctx.StateRepo.SetActiveRoom(room.ID); err != nil {
		return err
	}
	if err := ctx.Engine.SwitchRoom(cmd.Context(), room.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(room)
	}
	ctx.Formatter.Printf("Created room %q (%s)\n", room.Name, room.ID)
	return nil
}

func runRoomJoin(cmd *cobra.Command, args []string) error {
	member := &model.Member{
		UserID:               ctx.Profile.UserID,
		Name:                 ctx.Profile.Name,
		NotificationsEnabled: true,
		JoinedAt:             time.Now(),
	}
	if err := ctx.RoomRepo.Join(args[0], member); err != nil {
		return err
	}

	if err := ctx.StateRepo.SetActiveRoom(args[0]); err != nil {
		return err
	}
	if err := ctx.Engine.SwitchRoom(cmd.Context(), args[0]); err != nil {
		return err
	}

	ctx.Formatter.Printf("Joined room %s\n", args[0])
	return nil
}

func runRoomLeave(cmd *cobra.Command, args []string) error {
	if err := ctx.RoomRepo.Leave(args[0], ctx.Profile.UserID); err != nil {
		return err
	}

	// A left room keeps no timer: shared record, map entry, and local
	// snapshot all go with the membership.
	if err := ctx.Engine.LeaveRoom(cmd.Context(), args[0]); err != nil {
		return err
	}

	if ctx.Session.CurrentRoomID() == args[0] {
		if err := ctx.StateRepo.ClearActiveRoom(); err != nil {
			return err
		}
	}

	ctx.Formatter.Printf("Left room %s\n", args[0])
	return nil
}

func runRoomSwitch(cmd *cobra.Command, args []string) error {
	room, err := ctx.RoomRepo.Get(args[0])
	if err != nil {
		return err
	}

	if err := ctx.StateRepo.SetActiveRoom(room.ID); err != nil {
		return err
	}
	if err := ctx.Engine.SwitchRoom(cmd.Context(), room.ID); err != nil {
		return err
	}

	ctx.Formatter.Printf("Switched to room %q\n", room.Name)
	return nil
}

func runRoomList(cmd *cobra.Command, args []string) error {
	rooms, err := ctx.RoomRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(rooms)
	}

	active := ctx.Session.CurrentRoomID()
	for _, room := range rooms {
		marker := " "
		if room.ID == active {
			marker = "*"
		}
		ctx.Formatter.Printf("%s %s  %s  (%d members)\n",
			marker, room.ID, room.Name, len(room.Members))
	}
	if len(rooms) == 0 {
		ctx.Formatter.Println("No rooms. Create one with 'treatclock room create NAME'.")
	}
	return nil
}

func runRoomNotify(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return apperrors.NewUserErrorWithField("state", args[0],
			"invalid notification state", "Use 'on' or 'off'.")
	}

	if err := ctx.RoomRepo.SetNotificationsEnabled(roomID, ctx.Profile.UserID, enabled); err != nil {
		return err
	}

	state := "off"
	if enabled {
		state = "on"
	}
	ctx.Formatter.Printf("Notifications %s for room %s\n", state, roomID)
	return nil
}

// describeTimer renders a one-line timer summary.
func describeTimer(timer *model.TreatmentTimer, now time.Time) string {
	if timer == nil || !timer.IsEffective(now) {
		return "no active treatment timer"
	}
	return "treatment timer running, " + output.FormatDuration(timer.Remaining(now)) +
		" remaining (until " + output.FormatTime(timer.EndTime) + ")"
}
