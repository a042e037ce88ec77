package detect

import (
	"context"
	"log/slog"
	"time"
)

// Input is what a layer sees: the message that just arrived and the prior
// conversation, counterparty and agent turns interleaved in order.
type Input struct {
	Latest  string
	History []string
}

// Layer is one classification strategy in the cascade. Evaluate returns its
// verdict and whether that verdict is decisive; a non-decisive layer hands
// the input to the next one.
type Layer interface {
	Name() string
	Evaluate(ctx context.Context, in Input) (Verdict, bool)
}

// Pipeline runs the layers in fixed order and short-circuits on the first
// decisive verdict. Layer order carries the cheap-before-expensive contract:
// the contextual layer sits last because it is the only one that leaves the
// process.
type Pipeline struct {
	layers []Layer
	logger *slog.Logger
}

// New builds the standard cascade. completions may be nil, in which case the
// contextual layer always yields its cautious default.
func New(completions Completer, timeout time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		layers: []Layer{
			&urlLayer{},
			&notificationLayer{},
			&indicatorLayer{},
			newContextualLayer(completions, timeout, logger),
		},
		logger: logger,
	}
}

// NewWithLayers builds a pipeline with an explicit layer list (tests).
func NewWithLayers(logger *slog.Logger, layers ...Layer) *Pipeline {
	return &Pipeline{layers: layers, logger: logger}
}

// Classify produces the verdict for the current turn. cached is the
// session's previous verdict, or nil on the first turn.
//
// Reuse rule: once a session holds a confirmed scam verdict, the cascade is
// skipped and only the strong-indicator layer runs, so confidence and scam
// type can still be refined upward by fresh evidence. A confirmed verdict is
// never downgraded, whatever the new turn looks like.
func (p *Pipeline) Classify(ctx context.Context, in Input, cached *Verdict) Verdict {
	if cached != nil && cached.Confirmed() {
		return p.refine(ctx, in, *cached)
	}

	for _, layer := range p.layers {
		verdict, decisive := layer.Evaluate(ctx, in)
		if !decisive {
			continue
		}
		p.logger.Debug("layer decided",
			"layer", layer.Name(),
			"is_scam", verdict.IsScam,
			"confidence", verdict.Confidence,
		)
		if cached != nil && cached.IsScam && !verdict.IsScam {
			// A session flagged as scam at any confidence stays flagged;
			// a later benign-looking turn is how scammers cool down.
			return *cached
		}
		return verdict
	}

	// Every layer passed, including the fallback. Treat as benign chatter.
	return Verdict{
		IsScam:          false,
		Confidence:      0.3,
		ScamType:        ScamTypeNone,
		DecidedBy:       "exhausted",
		MatchedPatterns: []string{},
	}
}

// refine re-runs only the strong-indicator layer over a confirmed verdict,
// folding in any newly matched patterns and raising (never lowering) the
// confidence and specificity.
func (p *Pipeline) refine(ctx context.Context, in Input, cached Verdict) Verdict {
	var ind indicatorLayer
	fresh, decisive := ind.Evaluate(ctx, in)
	if !decisive {
		return cached
	}

	out := cached
	out.MatchedPatterns = appendNew(out.MatchedPatterns, fresh.MatchedPatterns)
	if fresh.Confidence > out.Confidence {
		out.Confidence = fresh.Confidence
	}
	if out.ScamType == ScamTypeGeneral && fresh.ScamType != ScamTypeGeneral {
		out.ScamType = fresh.ScamType
	}
	return out
}

func appendNew(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			dst = append(dst, v)
		}
	}
	return dst
}
