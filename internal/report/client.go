// Package report delivers cumulative session results to the external
// evaluator endpoint and mirrors each delivery onto the swarm bus.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/lure/internal/detect"
	"github.com/MikeSquared-Agency/lure/internal/hermes"
	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

const deliveryTimeout = 10 * time.Second

// Bus is the optional swarm event mirror. Satisfied by *hermes.Client.
type Bus interface {
	Publish(subject string, data any) error
}

// Client posts reports to the evaluator's callback URL. It implements
// session.Reporter. A delivery failure is logged and dropped: the payload
// is cumulative, so the next notification carries everything this one did.
type Client struct {
	callbackURL string
	bus         Bus
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(callbackURL string, bus Bus, logger *slog.Logger) *Client {
	return &Client{
		callbackURL: callbackURL,
		bus:         bus,
		httpClient:  &http.Client{Timeout: deliveryTimeout},
		logger:      logger,
	}
}

// payload is the evaluator's wire format. Intelligence categories are
// always present, empty or not.
type payload struct {
	ReportID                  string             `json:"reportId"`
	SessionID                 string             `json:"sessionId"`
	ScamDetected              bool               `json:"scamDetected"`
	ScamType                  string             `json:"scamType"`
	Confidence                float64            `json:"confidence"`
	TotalMessagesExchanged    int                `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int                `json:"engagementDurationSeconds"`
	ExtractedIntelligence     intel.Intelligence `json:"extractedIntelligence"`
	AgentNotes                string             `json:"agentNotes"`
}

// Report delivers one cumulative report. Safe to call more than once with
// the same state: the evaluator keys on sessionId and the payload is a full
// overwrite, not an increment.
func (c *Client) Report(ctx context.Context, r session.Report) {
	p := payload{
		ReportID:                  uuid.NewString(),
		SessionID:                 r.SessionID,
		ScamDetected:              r.Verdict.IsScam,
		ScamType:                  string(r.Verdict.ScamType),
		Confidence:                r.Verdict.Confidence,
		TotalMessagesExchanged:    r.Metrics.TotalMessagesExchanged,
		EngagementDurationSeconds: r.Metrics.EngagementDurationSeconds,
		ExtractedIntelligence:     r.Intelligence,
		AgentNotes:                r.AgentNotes,
	}

	delivered := c.deliver(ctx, p)

	if c.bus != nil {
		evt := hermes.ReportSentEvent{
			SessionID:  r.SessionID,
			ReportID:   p.ReportID,
			Turns:      r.Metrics.TotalMessagesExchanged,
			IntelItems: r.Intelligence.Total(),
			Delivered:  delivered,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := c.bus.Publish(hermes.SubjectReportSent, evt); err != nil {
			c.logger.Warn("failed to publish report event", "session_id", r.SessionID, "error", err)
		}
	}
}

func (c *Client) deliver(ctx context.Context, p payload) bool {
	if c.callbackURL == "" {
		c.logger.Warn("callback URL not configured — report dropped", "session_id", p.SessionID)
		return false
	}

	body, err := json.Marshal(p)
	if err != nil {
		c.logger.Error("failed to marshal report", "session_id", p.SessionID, "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callbackURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to build report request", "session_id", p.SessionID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("report delivery failed", "session_id", p.SessionID, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("evaluator rejected report",
			"session_id", p.SessionID,
			"status", resp.StatusCode,
		)
		return false
	}

	c.logger.Info("report delivered",
		"session_id", p.SessionID,
		"report_id", p.ReportID,
		"intel_items", p.ExtractedIntelligence.Total(),
	)
	return true
}

// ScamConfirmed publishes the confirmed-scam event for a session.
func (c *Client) ScamConfirmed(sessionID string, v detect.Verdict) {
	if c.bus == nil {
		return
	}
	evt := hermes.ScamConfirmedEvent{
		SessionID:  sessionID,
		ScamType:   string(v.ScamType),
		Confidence: v.Confidence,
		DecidedBy:  v.DecidedBy,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.bus.Publish(hermes.SubjectScamConfirmed, evt); err != nil {
		c.logger.Warn("failed to publish scam confirmed event", "session_id", sessionID, "error", err)
	}
}

var _ session.Reporter = (*Client)(nil)
