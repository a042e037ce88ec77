package hermes

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects lure publishes on the swarm bus. Other agents (chronicle,
// dashboards) consume these; lure itself never subscribes.
const (
	SubjectScamConfirmed = "swarm.lure.scam.confirmed"
	SubjectReportSent    = "swarm.lure.report.sent"
)

// ScamConfirmedEvent is published the first time a session's verdict locks
// in as a confirmed scam.
type ScamConfirmedEvent struct {
	SessionID  string  `json:"session_id"`
	ScamType   string  `json:"scam_type"`
	Confidence float64 `json:"confidence"`
	DecidedBy  string  `json:"decided_by"`
	Timestamp  string  `json:"timestamp"`
}

// ReportSentEvent mirrors every evaluator callback onto the bus.
type ReportSentEvent struct {
	SessionID  string `json:"session_id"`
	ReportID   string `json:"report_id"`
	Turns      int    `json:"turns"`
	IntelItems int    `json:"intel_items"`
	Delivered  bool   `json:"delivered"`
	Timestamp  string `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	c.conn.Close()
}
