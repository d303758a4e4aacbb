package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/domain"
)

const sendTimeout = 5 * time.Second

// HTTPSender implements ports.AlertSender by POSTing the alert as JSON.
// There is no retry; with no endpoint configured alerts are only logged.
type HTTPSender struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

func NewHTTPSender(endpoint string, log *slog.Logger) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: sendTimeout},
		log:      log.With(slog.String("component", "alert_sender")),
	}
}

// SendAlert delivers one alert
func (s *HTTPSender) SendAlert(ctx context.Context, alert domain.AlertContent) error {
	if s.endpoint == "" {
		s.log.Info("Alert not sent, no endpoint configured",
			slog.String("alert_id", alert.ID.String()),
			slog.String("alert_type", string(alert.AlertType)),
			slog.String("url", alert.URL),
		)
		return nil
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}

	s.log.Debug("Alert sent",
		slog.String("alert_id", alert.ID.String()),
		slog.String("alert_type", string(alert.AlertType)),
	)
	return nil
}
