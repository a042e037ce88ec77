package detect

import (
	"context"
	"testing"
)

type stubLayer struct {
	name     string
	verdict  Verdict
	decisive bool
	calls    int
}

func (s *stubLayer) Name() string { return s.name }

func (s *stubLayer) Evaluate(_ context.Context, _ Input) (Verdict, bool) {
	s.calls++
	return s.verdict, s.decisive
}

func TestPipeline_ShortCircuitsOnFirstDecisiveLayer(t *testing.T) {
	first := &stubLayer{
		name:     "first",
		verdict:  Verdict{IsScam: true, Confidence: 0.9, ScamType: ScamTypeBankFraud, DecidedBy: "first"},
		decisive: true,
	}
	second := &stubLayer{name: "second", decisive: true}

	p := NewWithLayers(discardLogger(), first, second)
	verdict := p.Classify(context.Background(), Input{Latest: "x"}, nil)

	if verdict.DecidedBy != "first" {
		t.Errorf("decided by %q", verdict.DecidedBy)
	}
	if second.calls != 0 {
		t.Errorf("second layer called %d times after short-circuit", second.calls)
	}
}

func TestPipeline_ExhaustedFallback(t *testing.T) {
	passive := &stubLayer{name: "passive"}

	p := NewWithLayers(discardLogger(), passive)
	verdict := p.Classify(context.Background(), Input{Latest: "x"}, nil)

	if verdict.IsScam {
		t.Errorf("exhausted cascade must not flag scam: %+v", verdict)
	}
	if verdict.DecidedBy != "exhausted" || verdict.Confidence != 0.3 {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestPipeline_ConfirmedVerdictSkipsCascade(t *testing.T) {
	trap := &stubLayer{
		name:     "trap",
		verdict:  Verdict{IsScam: false, Confidence: 0.9, ScamType: ScamTypeNone, DecidedBy: "trap"},
		decisive: true,
	}
	p := NewWithLayers(discardLogger(), trap)

	cached := Verdict{IsScam: true, Confidence: 0.9, ScamType: ScamTypeBankFraud, DecidedBy: "strong_indicators"}
	verdict := p.Classify(context.Background(), Input{Latest: "ok, let me check"}, &cached)

	if trap.calls != 0 {
		t.Errorf("cascade ran %d layers despite confirmed verdict", trap.calls)
	}
	if !verdict.IsScam || verdict.Confidence < 0.9 {
		t.Errorf("confirmed verdict degraded: %+v", verdict)
	}
}

func TestPipeline_RefinementRaisesConfidence(t *testing.T) {
	p := NewWithLayers(discardLogger())

	cached := Verdict{
		IsScam:          true,
		Confidence:      0.85,
		ScamType:        ScamTypeGeneral,
		DecidedBy:       "contextual",
		MatchedPatterns: []string{"impersonation"},
	}
	verdict := p.Classify(context.Background(), Input{
		Latest: "Your account will be blocked! Share your OTP immediately",
	}, &cached)

	if verdict.Confidence <= 0.85 {
		t.Errorf("confidence not raised: %+v", verdict)
	}
	if verdict.ScamType != ScamTypeBankFraud {
		t.Errorf("scam type not specialised: %s", verdict.ScamType)
	}
	if !containsString(verdict.MatchedPatterns, "impersonation") {
		t.Errorf("prior patterns lost: %v", verdict.MatchedPatterns)
	}
	if !containsString(verdict.MatchedPatterns, "otp_request") {
		t.Errorf("fresh patterns not folded in: %v", verdict.MatchedPatterns)
	}
}

func TestPipeline_RefinementNeverLowers(t *testing.T) {
	p := NewWithLayers(discardLogger())

	cached := Verdict{
		IsScam:     true,
		Confidence: 0.95,
		ScamType:   ScamTypeUPIFraud,
		DecidedBy:  "strong_indicators",
	}
	verdict := p.Classify(context.Background(), Input{
		Latest: "Act now and share your OTP",
	}, &cached)

	if verdict.Confidence < 0.95 {
		t.Errorf("refinement lowered confidence: %+v", verdict)
	}
	if verdict.ScamType != ScamTypeUPIFraud {
		t.Errorf("specific scam type overwritten: %s", verdict.ScamType)
	}
}

func TestPipeline_ScamFlagNotReverted(t *testing.T) {
	benign := &stubLayer{
		name:     "benign",
		verdict:  Verdict{IsScam: false, Confidence: 0.75, ScamType: ScamTypeNone, DecidedBy: "benign"},
		decisive: true,
	}
	p := NewWithLayers(discardLogger(), benign)

	cached := Verdict{IsScam: true, Confidence: 0.35, ScamType: ScamTypeGeneral, DecidedBy: "contextual_default"}
	verdict := p.Classify(context.Background(), Input{Latest: "thank you sir, very helpful"}, &cached)

	if !verdict.IsScam {
		t.Errorf("scam flag reverted by benign turn: %+v", verdict)
	}
	if verdict.Confidence != 0.35 {
		t.Errorf("cached verdict mutated: %+v", verdict)
	}
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
