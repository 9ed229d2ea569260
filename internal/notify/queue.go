package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/treatclock/treatclock/internal/config"
	"github.com/treatclock/treatclock/internal/logging"
)

// QueuedNotification represents a failed delivery waiting to be resent.
type QueuedNotification struct {
	ID          string          `json:"id"`
	WebhookName string          `json:"webhook_name"`
	URL         string          `json:"url"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
	CreatedAt   time.Time       `json:"created_at"`
	NextRetry   time.Time       `json:"next_retry"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error,omitempty"`
}

// RetryQueue manages a queue of failed webhook deliveries for retry.
type RetryQueue struct {
	mu       sync.Mutex
	queue    []*QueuedNotification
	client   *HTTPClient
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	interval time.Duration
	backoff  []time.Duration
}

// NewRetryQueue creates a new retry queue with the given HTTP client.
func NewRetryQueue(client *HTTPClient) *RetryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetryQueue{
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		interval: config.Global.RetryQueue.CheckInterval,
		backoff:  config.Global.RetryQueue.BackoffSchedule,
	}
}

// Start begins processing the retry queue in the background.
func (q *RetryQueue) Start() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.wg.Add(1)
	go q.processLoop()
}

// Stop stops the retry queue processor.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}

// Enqueue adds a failed delivery to the retry queue.
func (q *RetryQueue) Enqueue(webhookName, url, contentType string, body []byte, cause error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := &QueuedNotification{
		ID:          uuid.New().String(),
		WebhookName: webhookName,
		URL:         url,
		ContentType: contentType,
		Body:        body,
		CreatedAt:   time.Now(),
		NextRetry:   time.Now().Add(q.backoffFor(0)),
	}
	if cause != nil {
		n.LastError = cause.Error()
	}

	q.queue = append(q.queue, n)

	logging.Info("notification queued for retry",
		logging.KeyWebhook, webhookName,
		"queue_size", len(q.queue))
}

// Len returns the number of queued deliveries.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// processLoop runs in the background and processes queued deliveries.
func (q *RetryQueue) processLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processQueue()
		}
	}
}

// processQueue attempts to resend all ready deliveries.
func (q *RetryQueue) processQueue() {
	q.mu.Lock()
	now := time.Now()

	var ready, remaining []*QueuedNotification
	for _, n := range q.queue {
		if !n.NextRetry.After(now) {
			ready = append(ready, n)
		} else {
			remaining = append(remaining, n)
		}
	}
	q.queue = remaining
	q.mu.Unlock()

	for _, n := range ready {
		q.processNotification(n)
	}
}

// processNotification attempts to resend one queued delivery, requeueing
// it with backoff until the schedule is exhausted.
func (q *RetryQueue) processNotification(n *QueuedNotification) {
	n.Attempts++

	result := q.client.Send(q.ctx, n.URL, n.ContentType, n.Body)
	if result.Error == nil {
		logging.Info("queued notification sent",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts)
		return
	}

	n.LastError = result.Error.Error()
	if n.Attempts >= len(q.backoff) {
		logging.Error("notification dropped after max retries",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts,
			logging.KeyError, result.Error)
		return
	}

	n.NextRetry = time.Now().Add(q.backoffFor(n.Attempts))
	q.mu.Lock()
	q.queue = append(q.queue, n)
	q.mu.Unlock()
}

// backoffFor returns the delay before the given attempt number.
func (q *RetryQueue) backoffFor(attempt int) time.Duration {
	if len(q.backoff) == 0 {
		return 30 * time.Second
	}
	if attempt >= len(q.backoff) {
		return q.backoff[len(q.backoff)-1]
	}
	return q.backoff[attempt]
}
