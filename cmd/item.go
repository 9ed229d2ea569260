package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/model"
)

var itemFlagCategory string

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage dosing-schedule items in the active room",
}

var itemAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an item to the active room",
	Long: `Add an item to the active room's dosing schedule.

Only treatment-category items gate the shared timer. Maintenance and
other items are tracked but never start or hold a timer.`,
	Args: cobra.ExactArgs(1),
	RunE: runItemAdd,
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active room's items",
	RunE:  runItemList,
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an item from the active room",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemRemove,
}

func init() {
	itemAddCmd.Flags().StringVarP(&itemFlagCategory, "category", "c",
		model.CategoryTreatment, "Item category: treatment, maintenance, other")

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemRemoveCmd)
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	category := strings.ToLower(itemFlagCategory)
	if !model.ValidCategory(category) {
		return apperrors.ErrInvalidCategory
	}

	item, err := ctx.ItemRepo.Create(roomID, args[0], category)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(item)
	}
	ctx.Formatter.Printf("Added %s item %q\n", item.Category, item.Name)
	return nil
}

func runItemList(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	items, err := ctx.ItemRepo.ListByRoom(roomID)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(items)
	}

	logged, err := ctx.DoseLogRepo.LoggedItemIDs(roomID, ctx.Session.Today())
	if err != nil {
		return err
	}

	for _, item := range items {
		state := " "
		if logged[item.ID] {
			state = "x"
		}
		ctx.Formatter.Printf("[%s] %-20s %s\n", state, item.Name, item.Category)
	}
	if len(items) == 0 {
		ctx.Formatter.Println("No items. Add one with 'treatclock item add NAME'.")
	}
	return nil
}

func runItemRemove(cmd *cobra.Command, args []string) error {
	roomID, err := requireRoom()
	if err != nil {
		return err
	}

	item, err := ctx.ItemRepo.FindByName(roomID, args[0])
	if err != nil {
		return err
	}

	if err := ctx.ItemRepo.Delete(roomID, item.ID); err != nil {
		return err
	}

	// Removing an item changes the qualifying set.
	ctx.Engine.LogsChanged(roomID, item)

	ctx.Formatter.Printf("Removed item %q\n", item.Name)
	return nil
}
