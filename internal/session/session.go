package session

import (
	"time"

	"github.com/MikeSquared-Agency/lure/internal/detect"
	"github.com/MikeSquared-Agency/lure/internal/intel"
)

// Sender identifies which side of the conversation produced a message.
// Wire values follow the evaluator contract: the counterparty is the
// "scammer", our persona is the "user".
type Sender string

const (
	SenderCounterparty Sender = "scammer"
	SenderAgent        Sender = "user"
)

// Message is one turn of the conversation. Immutable once appended.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// EngagementMetrics reports how long and how deep the baiting conversation
// has run.
type EngagementMetrics struct {
	TotalMessagesExchanged    int `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int `json:"engagementDurationSeconds"`
}

// Session is the per-conversation state. It is owned by the Store and must
// only be touched while holding the session's lock (see Store.Acquire).
type Session struct {
	ID             string
	History        []Message
	Intelligence   intel.Intelligence
	Verdict        *detect.Verdict
	FirstMessageAt time.Time
	LastMessageAt  time.Time
	TurnsExchanged int

	// Notification bookkeeping. Updated atomically with the decision to
	// fire, under the session lock, so a retried inbound call cannot
	// double-fire.
	LastNotifiedAt          *time.Time
	LastNotifiedFingerprint string
	LastNotifiedTurns       int
	ReportsSent             int
}

func newSession(id string) *Session {
	return &Session{
		ID:           id,
		Intelligence: intel.New(),
	}
}

// seed installs the evaluator-supplied prior history into a freshly created
// session. The evaluator resends full history on every call, so a restarted
// process can rebuild state mid-conversation.
func (s *Session) seed(prior []Message) {
	if len(s.History) > 0 || len(prior) == 0 {
		return
	}
	s.History = append(s.History, prior...)
	s.TurnsExchanged = len(prior)
	s.FirstMessageAt = prior[0].Timestamp
	s.LastMessageAt = prior[len(prior)-1].Timestamp
}

// append records the new inbound message and advances the turn counter.
func (s *Session) append(msg Message) {
	s.History = append(s.History, msg)
	s.TurnsExchanged++
	if s.FirstMessageAt.IsZero() {
		s.FirstMessageAt = msg.Timestamp
	}
	if msg.Timestamp.After(s.LastMessageAt) {
		s.LastMessageAt = msg.Timestamp
	}
}
