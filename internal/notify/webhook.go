package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/envwatch/envwatch/internal/domain/alert"
)

var _ alert.Notifier = (*Webhook)(nil)

// Webhook posts alert text to every configured channel URL, in order.
// One unreachable channel never blocks the others, and delivery failures
// never reach the monitor loop; they are logged here and dropped.
type Webhook struct {
	client *http.Client
	log    *zap.Logger
}

func NewWebhook(timeout time.Duration, log *zap.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		client: &http.Client{Timeout: timeout},
		log:    log.With(zap.String("component", "notify.webhook")),
	}
}

type payload struct {
	Text string `json:"text"`
}

func (w *Webhook) Notify(ctx context.Context, ev alert.Event) {
	body, err := json.Marshal(payload{Text: ev.Text()})
	if err != nil {
		w.log.Warn("marshal payload", zap.Error(err))
		return
	}

	for _, url := range ev.Channels {
		if err := w.post(ctx, url, body); err != nil {
			w.log.Warn("webhook delivery",
				zap.String("monitor", ev.Monitor),
				zap.String("channel", url),
				zap.Error(err),
			)
		}
	}
}

func (w *Webhook) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
