package cmd

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/model"
)

var (
	webhookFlagType     string
	webhookFlagTemplate string
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage notification webhooks",
}

var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a webhook",
	Long: `Add a webhook. Fired timer notifications on this device are
delivered through every enabled webhook.

Examples:
  treatclock webhook add family-slack https://hooks.slack.com/services/XXX
  treatclock webhook add homeassistant https://ha.local/api/webhook/abc --type generic`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks",
	RunE:  runWebhookList,
}

var webhookRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookRemove,
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through all enabled webhooks",
	RunE:  runWebhookTest,
}

func init() {
	webhookAddCmd.Flags().StringVarP(&webhookFlagType, "type", "t",
		model.WebhookTypeSlack, "Webhook type: slack, generic")
	webhookAddCmd.Flags().StringVar(&webhookFlagTemplate, "template", "",
		"Payload template for generic webhooks")

	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookTestCmd)
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	if webhookFlagType != model.WebhookTypeSlack && webhookFlagType != model.WebhookTypeGeneric {
		return apperrors.NewUserErrorWithField("type", webhookFlagType,
			"invalid webhook type", "Use 'slack' or 'generic'.")
	}

	webhook := &model.Webhook{
		Name:      args[0],
		Type:      webhookFlagType,
		URL:       args[1],
		Enabled:   true,
		Template:  webhookFlagTemplate,
		CreatedAt: time.Now(),
	}
	if err := ctx.WebhookRepo.Create(webhook); err != nil {
		return err
	}

	ctx.Formatter.Printf("Added %s webhook %q\n", webhook.Type, webhook.Name)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(webhooks)
	}

	for _, w := range webhooks {
		state := "enabled"
		if !w.Enabled {
			state = "disabled"
		}
		ctx.Formatter.Printf("%-20s %-8s %-8s %s\n", w.Name, w.Type, state, w.MaskedURL())
	}
	if len(webhooks) == 0 {
		ctx.Formatter.Println("No webhooks configured.")
	}
	return nil
}

func runWebhookRemove(cmd *cobra.Command, args []string) error {
	if err := ctx.WebhookRepo.Delete(args[0]); err != nil {
		return err
	}
	ctx.Formatter.Printf("Removed webhook %q\n", args[0])
	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	n := model.NewNotification(model.NotifyTest,
		"Treatclock test", "If you can read this, webhooks work.")

	results := ctx.Dispatcher.SendNotification(cmd.Context(), n)
	if len(results) == 0 {
		ctx.Formatter.Println("No enabled webhooks to test.")
		return nil
	}

	for _, r := range results {
		if r.Error != nil {
			ctx.Formatter.Printf("%-20s FAILED: %v\n", r.WebhookName, r.Error)
		} else {
			ctx.Formatter.Printf("%-20s ok (%d)\n", r.WebhookName, r.StatusCode)
		}
	}
	return nil
}
