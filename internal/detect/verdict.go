package detect

// ScamType labels the dominant fraud category behind a scam verdict.
type ScamType string

const (
	ScamTypeBankFraud ScamType = "bank_fraud"
	ScamTypeUPIFraud  ScamType = "upi_fraud"
	ScamTypePhishing  ScamType = "phishing"
	ScamTypeGeneral   ScamType = "general_scam"
	ScamTypeNone      ScamType = "not_scam"
)

// Verdict is the pipeline's decision for a session: the scam/not-scam call,
// how sure we are, which layer decided, and the pattern provenance behind it.
type Verdict struct {
	IsScam          bool     `json:"isScam"`
	Confidence      float64  `json:"confidence"`
	ScamType        ScamType `json:"scamType"`
	DecidedBy       string   `json:"decidedBy"`
	MatchedPatterns []string `json:"matchedPatterns"`
	Notes           string   `json:"notes,omitempty"`
}

// HighConfidence is the threshold above which a scam verdict is considered
// confirmed: the pipeline reuses it across turns instead of re-running the
// cascade, and it is never reverted to not_scam.
const HighConfidence = 0.8

// Confirmed reports whether this verdict locks the session as a scam.
func (v Verdict) Confirmed() bool {
	return v.IsScam && v.Confidence >= HighConfidence
}
