package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/detect"
	"github.com/MikeSquared-Agency/lure/internal/intel"
)

const (
	// Notification fires from this turn onward.
	minTurnsToNotify = 3
	// Without new intelligence, re-notify only every this many turns.
	notifyInterval = 5
	// Duration floor guard: once a conversation is this deep, synthetic or
	// skewed timestamps must not report a near-zero engagement duration.
	floorAfterTurns      = 5
	floorDurationSeconds = 30
)

// Report is the cumulative payload handed to the reporter when the
// notification policy fires. It carries full accumulated state, so a
// duplicate delivery overwrites the evaluator's record with identical data
// rather than incrementing anything.
type Report struct {
	SessionID    string
	Verdict      detect.Verdict
	Intelligence intel.Intelligence
	Metrics      EngagementMetrics
	AgentNotes   string
}

// Reporter delivers a report to the external evaluator. Delivery failures
// are the reporter's concern; the orchestrator never blocks a turn on them.
// ScamConfirmed is a lighter signal, fired once per session when the verdict
// first locks in.
type Reporter interface {
	Report(ctx context.Context, r Report)
	ScamConfirmed(sessionID string, v detect.Verdict)
}

// Archiver persists session snapshots out of band. Optional.
type Archiver interface {
	SaveSnapshot(ctx context.Context, s *Session) error
}

// Result is everything the response builder needs for one turn.
type Result struct {
	Verdict      detect.Verdict
	Intelligence intel.Intelligence
	Metrics      EngagementMetrics
	AgentNotes   string
	Notified     bool
}

// Orchestrator owns per-session state and drives the per-turn flow:
// append → extract → classify → metrics → notification decision.
type Orchestrator struct {
	sessions *Store
	engine   *intel.Engine
	pipeline *detect.Pipeline
	reporter Reporter
	archive  Archiver
	logger   *slog.Logger

	reportsIssued atomic.Int64
}

func NewOrchestrator(pipeline *detect.Pipeline, reporter Reporter, archive Archiver, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		sessions: NewStore(),
		engine:   intel.NewEngine(),
		pipeline: pipeline,
		reporter: reporter,
		archive:  archive,
		logger:   logger,
	}
}

// ActiveSessions returns the number of sessions currently tracked.
func (o *Orchestrator) ActiveSessions() int { return o.sessions.Len() }

// ReportsIssued returns how many evaluator notifications this process has
// fired across all sessions.
func (o *Orchestrator) ReportsIssued() int64 { return o.reportsIssued.Load() }

// Advance processes one inbound message for a session. prior is the
// evaluator-supplied conversation history, used only to seed a session this
// process has not seen before.
func (o *Orchestrator) Advance(ctx context.Context, sessionID string, msg Message, prior []Message) Result {
	s, release := o.sessions.Acquire(sessionID)
	defer release()

	s.seed(prior)
	s.append(msg)

	// Re-derive intelligence from the full history and union it in. The
	// union keeps every category monotonically non-decreasing even though
	// the extraction itself is recomputed from scratch.
	fresh := o.engine.Extract(historyText(s.History), msg.Text)
	s.Intelligence.Merge(fresh)

	verdict := o.pipeline.Classify(ctx, detect.Input{
		Latest:  msg.Text,
		History: historyLines(s.History),
	}, s.Verdict)
	wasConfirmed := s.Verdict != nil && s.Verdict.Confirmed()
	s.Verdict = &verdict
	if o.reporter != nil && verdict.Confirmed() && !wasConfirmed {
		o.reporter.ScamConfirmed(s.ID, verdict)
	}

	metrics := o.metrics(s)
	notes := buildNotes(verdict, s.Intelligence)

	notified := o.maybeNotify(s, verdict, metrics, notes)

	o.logger.Info("turn processed",
		"session_id", sessionID,
		"turns", s.TurnsExchanged,
		"is_scam", verdict.IsScam,
		"confidence", verdict.Confidence,
		"decided_by", verdict.DecidedBy,
		"intel_items", s.Intelligence.Total(),
		"notified", notified,
	)

	if o.archive != nil {
		if err := o.archive.SaveSnapshot(ctx, s); err != nil {
			o.logger.Warn("session archive failed", "session_id", sessionID, "error", err)
		}
	}

	return Result{
		Verdict:      verdict,
		Intelligence: copyIntel(s.Intelligence),
		Metrics:      metrics,
		AgentNotes:   notes,
		Notified:     notified,
	}
}

// maybeNotify applies the notification policy and, when it fires, updates
// the bookkeeping before handing delivery to the reporter. Bookkeeping and
// decision happen under the session lock held by Advance, so a duplicate
// call for the same turn sees the updated fingerprint and does not re-fire.
func (o *Orchestrator) maybeNotify(s *Session, verdict detect.Verdict, metrics EngagementMetrics, notes string) bool {
	if o.reporter == nil || !verdict.IsScam || s.TurnsExchanged < minTurnsToNotify {
		return false
	}

	fp := s.Intelligence.Fingerprint()
	fresh := fp != s.LastNotifiedFingerprint
	periodic := s.LastNotifiedTurns > 0 && s.TurnsExchanged-s.LastNotifiedTurns >= notifyInterval
	if !fresh && !periodic {
		return false
	}

	now := time.Now().UTC()
	s.LastNotifiedAt = &now
	s.LastNotifiedFingerprint = fp
	s.LastNotifiedTurns = s.TurnsExchanged
	s.ReportsSent++
	o.reportsIssued.Add(1)

	report := Report{
		SessionID:    s.ID,
		Verdict:      verdict,
		Intelligence: copyIntel(s.Intelligence),
		Metrics:      metrics,
		AgentNotes:   notes,
	}

	// Delivery is fire-and-forget on a fresh context: the turn's response
	// must not wait on the evaluator's endpoint.
	go o.reporter.Report(context.Background(), report)
	return true
}

func (o *Orchestrator) metrics(s *Session) EngagementMetrics {
	duration := int(s.LastMessageAt.Sub(s.FirstMessageAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if s.TurnsExchanged >= floorAfterTurns && duration < floorDurationSeconds {
		duration = floorDurationSeconds
	}
	return EngagementMetrics{
		// +1 counts the reply this turn will produce.
		TotalMessagesExchanged:    s.TurnsExchanged + 1,
		EngagementDurationSeconds: duration,
	}
}

func buildNotes(v detect.Verdict, in intel.Intelligence) string {
	var b strings.Builder
	if v.IsScam {
		fmt.Fprintf(&b, "Scam detected (%s, confidence %.2f) by %s.", v.ScamType, v.Confidence, v.DecidedBy)
	} else {
		fmt.Fprintf(&b, "No scam detected (confidence %.2f, decided by %s).", v.Confidence, v.DecidedBy)
	}
	if len(v.MatchedPatterns) > 0 {
		fmt.Fprintf(&b, " Patterns: %s.", strings.Join(v.MatchedPatterns, ", "))
	}
	if v.Notes != "" {
		fmt.Fprintf(&b, " %s", v.Notes)
	}
	if in.HasActionable() {
		fmt.Fprintf(&b, " Extracted %d intelligence items.", in.Total())
	}
	return b.String()
}

func historyText(history []Message) string {
	parts := make([]string, len(history))
	for i, m := range history {
		parts[i] = m.Text
	}
	return strings.Join(parts, "\n")
}

func historyLines(history []Message) []string {
	lines := make([]string, len(history))
	for i, m := range history {
		lines[i] = string(m.Sender) + ": " + m.Text
	}
	return lines
}

func copyIntel(in intel.Intelligence) intel.Intelligence {
	out := intel.New()
	out.Merge(in)
	return out
}
