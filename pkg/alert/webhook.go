package alert

import (
	"encoding/json"

	"github.com/posturelab/go-posture/internal/httpc"
	"github.com/posturelab/go-posture/internal/log"
)

// Webhook posts alert events as JSON to an external endpoint. Delivery
// is fire-and-forget: a failed POST is logged and dropped, never
// retried, so a slow endpoint cannot stall the scoring loop.
type Webhook struct {
	url string
}

// NewWebhook creates a webhook notifier for the given URL.
func NewWebhook(url string) *Webhook {
	return &Webhook{url: url}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error("alert webhook: marshal failed", "error", err)
		return
	}

	go func() {
		resp, err := httpc.Post(w.url, "application/json", body)
		if err != nil {
			log.Warn("alert webhook: delivery failed", "url", w.url, "error", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Warn("alert webhook: endpoint rejected event", "url", w.url, "status", resp.StatusCode)
		}
	}()
}
