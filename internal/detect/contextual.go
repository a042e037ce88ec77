package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/anthropic"
)

// Completer is the slice of the completion capability this layer consumes.
type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

// contextualLayer is the expensive last resort: it asks the completion
// capability for a scam-probability judgment over the whole conversation.
// It always returns a decisive verdict — on any provider failure it falls
// back to a cautious default, because in this domain a missed scam costs
// more than a false positive.
type contextualLayer struct {
	completions Completer
	timeout     time.Duration
	logger      *slog.Logger
}

func newContextualLayer(completions Completer, timeout time.Duration, logger *slog.Logger) *contextualLayer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &contextualLayer{completions: completions, timeout: timeout, logger: logger}
}

func (l *contextualLayer) Name() string { return "contextual" }

// contextualResponse is the strict-JSON shape requested from the model.
type contextualResponse struct {
	IsScam           bool     `json:"is_scam"`
	Confidence       float64  `json:"confidence"`
	ScamType         string   `json:"scam_type"`
	DetectedPatterns []string `json:"detected_patterns"`
	Reasoning        string   `json:"reasoning"`
}

func (l *contextualLayer) Evaluate(ctx context.Context, in Input) (Verdict, bool) {
	if l.completions == nil {
		return l.defaultVerdict("completion capability not configured"), true
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	prompt := fmt.Sprintf(contextualUserPrompt, strings.Join(in.History, "\n"), in.Latest)
	raw, err := l.completions.Complete(ctx, contextualSystemPrompt, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, 1024)
	if err != nil {
		reason := "provider error"
		switch {
		case errors.Is(err, anthropic.ErrTimeout):
			reason = "completion timed out"
		case errors.Is(err, anthropic.ErrRateLimited):
			reason = "completion rate limited"
		}
		l.logger.Warn("contextual layer falling back to default verdict",
			"reason", reason,
			"error", err,
		)
		return l.defaultVerdict(reason), true
	}

	parsed, err := parseContextualResponse(raw)
	if err != nil {
		l.logger.Warn("unparseable completion response", "error", err, "raw", raw)
		return l.defaultVerdict("unparseable completion response"), true
	}

	return Verdict{
		IsScam:          parsed.IsScam,
		Confidence:      clamp01(parsed.Confidence),
		ScamType:        scamTypeFromString(parsed.ScamType, parsed.IsScam),
		DecidedBy:       l.Name(),
		MatchedPatterns: parsed.DetectedPatterns,
		Notes:           parsed.Reasoning,
	}, true
}

// defaultVerdict is the cautious fallback used when the completion
// capability is unavailable: flagged as scam at fixed low confidence so the
// engagement continues and extraction keeps accumulating.
func (l *contextualLayer) defaultVerdict(reason string) Verdict {
	return Verdict{
		IsScam:          true,
		Confidence:      0.35,
		ScamType:        ScamTypeGeneral,
		DecidedBy:       "contextual_default",
		MatchedPatterns: []string{"completion_unavailable"},
		Notes:           "default cautious verdict: " + reason,
	}
}

// parseContextualResponse tolerates models that wrap the JSON in markdown
// fences despite the strict-JSON instruction.
func parseContextualResponse(raw string) (*contextualResponse, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var resp contextualResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("parse contextual response: %w", err)
	}
	return &resp, nil
}

func scamTypeFromString(s string, isScam bool) ScamType {
	switch ScamType(s) {
	case ScamTypeBankFraud, ScamTypeUPIFraud, ScamTypePhishing, ScamTypeGeneral, ScamTypeNone:
		return ScamType(s)
	}
	if isScam {
		return ScamTypeGeneral
	}
	return ScamTypeNone
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
