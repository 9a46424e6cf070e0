package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vetverify/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertStaleSnapshot   AlertType = "stale_snapshot"
	AlertMissingSnapshot AlertType = "missing_snapshot"
	AlertCircuitOpen     AlertType = "circuit_open"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter turns a freshness Snapshot into alerts and delivers them via
// webhook.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot and returns any alerts.
func (a *Alerter) Evaluate(snap *Snapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	var stale, missing, open []string
	for _, r := range snap.Regions {
		switch {
		case !r.Present && r.Error == "":
			missing = append(missing, r.Region)
		case r.Stale:
			stale = append(stale, r.Region)
		}
		if r.Circuit == "open" {
			open = append(open, r.Region)
		}
	}

	if len(stale) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertStaleSnapshot,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d region snapshot(s) older than %s or empty: %s",
				len(stale), snap.StaleAfter, strings.Join(stale, ", "),
			),
			Details: map[string]any{
				"regions":     stale,
				"stale_after": snap.StaleAfter.String(),
			},
			Timestamp: now,
		})
	}

	if len(missing) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertMissingSnapshot,
			Severity: "low",
			Message:  fmt.Sprintf("%d region(s) have no cached snapshot: %s", len(missing), strings.Join(missing, ", ")),
			Details: map[string]any{
				"regions": missing,
			},
			Timestamp: now,
		})
	}

	if len(open) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertCircuitOpen,
			Severity: "high",
			Message:  fmt.Sprintf("live fetches suspended for %d region(s): %s", len(open), strings.Join(open, ", ")),
			Details: map[string]any{
				"regions": open,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
