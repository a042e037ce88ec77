package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

// flexTime accepts the timestamp shapes evaluators actually send: RFC 3339
// strings, epoch milliseconds, or epoch seconds. Unparsable values decode to
// the zero time rather than failing the whole request.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	// 13-digit values are epoch milliseconds, 10-digit values epoch seconds.
	if n > 1e12 {
		t.Time = time.UnixMilli(n).UTC()
	} else {
		t.Time = time.Unix(n, 0).UTC()
	}
	return nil
}

type wireMessage struct {
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp flexTime `json:"timestamp"`
}

type requestMeta struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

type honeypotRequest struct {
	SessionID           string        `json:"sessionId"`
	Message             wireMessage   `json:"message"`
	ConversationHistory []wireMessage `json:"conversationHistory"`
	Metadata            *requestMeta  `json:"metadata"`
}

type honeypotResponse struct {
	Status                string                    `json:"status"`
	ScamDetected          bool                      `json:"scamDetected"`
	ScamType              string                    `json:"scamType"`
	Confidence            float64                   `json:"confidence"`
	Reply                 string                    `json:"reply"`
	EngagementMetrics     session.EngagementMetrics `json:"engagementMetrics"`
	ExtractedIntelligence intel.Intelligence        `json:"extractedIntelligence"`
	AgentNotes            string                    `json:"agentNotes"`
}

// neutralResponse is the fallback body for malformed input or internal
// failure. The evaluator always gets the full response shape back.
func neutralResponse() honeypotResponse {
	return honeypotResponse{
		Status:                "success",
		ScamType:              "not_scam",
		Reply:                 "I'm sorry, I didn't understand that. Who is this?",
		ExtractedIntelligence: intel.New(),
		AgentNotes:            "No scam detected yet.",
	}
}

func (s *Server) honeypot(w http.ResponseWriter, r *http.Request) {
	// The turn must answer with a well-formed body no matter what goes
	// wrong below.
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("honeypot handler panic", "panic", rec)
			writeJSON(w, http.StatusOK, neutralResponse())
		}
	}()

	var req honeypotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("malformed honeypot request", "error", err)
		writeJSON(w, http.StatusOK, neutralResponse())
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message.Text) == "" {
		s.logger.Warn("incomplete honeypot request",
			"session_id", req.SessionID,
			"has_text", req.Message.Text != "",
		)
		writeJSON(w, http.StatusOK, neutralResponse())
		return
	}

	msg := toMessage(req.Message)
	prior := make([]session.Message, len(req.ConversationHistory))
	for i, m := range req.ConversationHistory {
		prior[i] = toMessage(m)
	}

	res := s.orch.Advance(r.Context(), req.SessionID, msg, prior)

	resp := honeypotResponse{
		Status:                "success",
		ScamDetected:          res.Verdict.IsScam,
		ScamType:              string(res.Verdict.ScamType),
		Confidence:            res.Verdict.Confidence,
		Reply:                 s.respond(res, req.Message.Text),
		EngagementMetrics:     res.Metrics,
		ExtractedIntelligence: res.Intelligence,
		AgentNotes:            res.AgentNotes,
	}
	writeJSON(w, http.StatusOK, resp)
}

func toMessage(m wireMessage) session.Message {
	ts := m.Timestamp.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	sender := session.SenderCounterparty
	if m.Sender == string(session.SenderAgent) {
		sender = session.SenderAgent
	}
	return session.Message{Sender: sender, Text: m.Text, Timestamp: ts}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
