// Package notify implements the external notification sink. Delivery is
// fire-and-forget: failures are logged and counted, never retried, and never
// block the caller.
package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pscheid92/screencoach/internal/metrics"
)

const sendTimeout = 5 * time.Second

// Webhook posts notifications as JSON to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: sendTimeout},
	}
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// Send delivers the notification in the background.
func (w *Webhook) Send(title, body, tag string) {
	go func() {
		doc, err := json.Marshal(payload{Title: title, Body: body, Tag: tag})
		if err != nil {
			slog.Error("Failed to marshal notification", "error", err)
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			return
		}

		resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(doc))
		if err != nil {
			slog.Warn("Notification delivery failed", "tag", tag, "error", err)
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			slog.Warn("Notification sink rejected message", "tag", tag, "status", resp.StatusCode)
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			return
		}
		metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	}()
}

// Log is the fallback sink used when no webhook is configured.
type Log struct{}

func (Log) Send(title, body, tag string) {
	slog.Info("Notification", "title", title, "body", body, "tag", tag)
	metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
}
