package notify

import (
	"context"
	"time"

	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/storage"
)

// Dispatcher sends fired notifications to all enabled webhooks.
type Dispatcher struct {
	webhookRepo *storage.WebhookRepo
	httpClient  *HTTPClient
	queue       *RetryQueue
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(webhookRepo *storage.WebhookRepo) *Dispatcher {
	client := NewHTTPClient()
	return &Dispatcher{
		webhookRepo: webhookRepo,
		httpClient:  client,
		queue:       NewRetryQueue(client),
	}
}

// StartQueue begins background retry processing of failed deliveries.
func (d *Dispatcher) StartQueue() {
	d.queue.Start()
}

// StopQueue stops the retry processor.
func (d *Dispatcher) StopQueue() {
	d.queue.Stop()
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// Deliver sends a notification to all enabled webhooks. Implements the
// Sink's Deliverer.
func (d *Dispatcher) Deliver(ctx context.Context, n *model.Notification) {
	d.SendNotification(ctx, n)
}

// SendNotification sends a notification to all enabled webhooks and
// returns the per-webhook results. Failed deliveries are queued for retry.
func (d *Dispatcher) SendNotification(ctx context.Context, n *model.Notification) []DispatchResult {
	webhooks, err := d.webhookRepo.ListEnabled()
	if err != nil {
		logging.Error("webhook list failed", logging.KeyError, err)
		return nil
	}
	if len(webhooks) == 0 {
		logging.DebugLog("no webhooks configured, notification dropped",
			"type", string(n.Type))
		return nil
	}

	results := make([]DispatchResult, 0, len(webhooks))
	for _, w := range webhooks {
		results = append(results, d.sendToWebhook(ctx, w, n))
	}
	return results
}

// sendToWebhook delivers a notification to one webhook.
func (d *Dispatcher) sendToWebhook(ctx context.Context, w *model.Webhook, n *model.Notification) DispatchResult {
	formatter := GetFormatter(w.Type)
	if g, ok := formatter.(*GenericFormatter); ok && w.Template != "" {
		g.Template = w.Template
	}

	body, err := formatter.Format(n)
	if err != nil {
		return DispatchResult{
			WebhookName: w.Name,
			Error:       err,
		}
	}

	result := d.httpClient.Send(ctx, w.URL, formatter.ContentType(), body)

	w.LastUsed = time.Now()
	if result.Error != nil {
		w.LastError = result.Error.Error()
		d.queue.Enqueue(w.Name, w.URL, formatter.ContentType(), body, result.Error)
		logging.Warn("webhook delivery failed, queued for retry",
			logging.KeyWebhook, w.Name,
			logging.KeyError, result.Error)
	} else {
		w.LastError = ""
		logging.DebugLog("webhook delivered",
			logging.KeyWebhook, w.Name,
			"status", result.StatusCode)
	}
	if err := d.webhookRepo.Update(w); err != nil {
		logging.Error("webhook status update failed",
			logging.KeyWebhook, w.Name,
			logging.KeyError, err)
	}

	return DispatchResult{
		WebhookName: w.Name,
		Success:     result.Error == nil,
		StatusCode:  result.StatusCode,
		Duration:    result.Duration,
		Error:       result.Error,
	}
}
