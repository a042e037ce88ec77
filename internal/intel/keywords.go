package intel

import (
	"regexp"
	"strings"
)

// suspiciousLexicon is the fixed keyword table: urgency, threat, credential
// and payment-action terms seen across the evaluator's scam corpus. Matching
// is word-anchored so short terms ("pin", "apk") do not fire inside ordinary
// words.
var suspiciousLexicon = []string{
	// urgency
	"urgent", "immediately", "immediate", "expiry", "expires", "last chance",
	"within 24 hours", "act now",
	// threat / consequence
	"blocked", "suspend", "suspended", "unauthorized", "legal action",
	"penalty", "deactivated", "frozen",
	// credential requests
	"verify", "kyc", "otp", "pin", "password", "cvv", "aadhaar", "pan card",
	// payment / lure actions
	"refund", "lottery", "winner", "prize", "cashback", "processing fee",
	"transfer", "upi", "download", "install", "apk",
}

var lexiconRes = buildLexicon()

func buildLexicon() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(suspiciousLexicon))
	for i, kw := range suspiciousLexicon {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}

// Keywords returns the lexicon terms present in text, in lexicon order.
// The returned values are the lexicon terms themselves (lowercase), not the
// matched spans, so repeated hits collapse naturally under set semantics.
func Keywords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var hits []string
	for i, re := range lexiconRes {
		if re.MatchString(text) {
			hits = append(hits, suspiciousLexicon[i])
		}
	}
	return hits
}
