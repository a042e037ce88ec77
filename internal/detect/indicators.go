package detect

import (
	"context"
	"regexp"
	"strings"
)

// patternGroup is one family of strong scam indicators. Groups and their
// members are data: the co-occurrence rule below reads group roles, not
// hard-coded control flow.
type patternGroup struct {
	name     string
	role     groupRole
	weight   float64
	patterns []namedPattern
}

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

type groupRole int

const (
	rolePressure   groupRole = iota // urgency, threats, lures
	roleCredential                  // explicit requests for credentials or payment action
)

var indicatorGroups = []patternGroup{
	{
		name:   "urgency",
		role:   rolePressure,
		weight: 0.02,
		patterns: []namedPattern{
			{"urgent_language", regexp.MustCompile(`(?i)\b(urgent|immediately|right now|act now)\b`)},
			{"deadline_pressure", regexp.MustCompile(`(?i)\b(within (24|48) hours|last chance|today itself|before midnight)\b`)},
			{"expiry_pressure", regexp.MustCompile(`(?i)\b(expir(?:e|es|y|ing)|deadline)\b`)},
		},
	},
	{
		name:   "threat",
		role:   rolePressure,
		weight: 0.03,
		patterns: []namedPattern{
			{"account_block_threat", regexp.MustCompile(`(?i)\b(account|card|sim|number)\b.{0,40}\b(block|blocked|suspend|suspended|freeze|frozen|deactivat\w*|clos\w*)\b`)},
			{"block_account_threat", regexp.MustCompile(`(?i)\b(block|suspend|freeze|deactivate)\b.{0,20}\b(account|card|sim)\b`)},
			{"legal_threat", regexp.MustCompile(`(?i)\b(legal action|police|arrest|court|fir|penalty|fine)\b`)},
			{"unauthorized_activity", regexp.MustCompile(`(?i)\b(unauthorized|suspicious|unusual)\b.{0,30}\b(transaction|activity|login|access)\b`)},
		},
	},
	{
		name:   "lure",
		role:   rolePressure,
		weight: 0.02,
		patterns: []namedPattern{
			{"lottery_lure", regexp.MustCompile(`(?i)\b(lottery|lucky draw|jackpot)\b`)},
			{"prize_lure", regexp.MustCompile(`(?i)\b(won|winner|congratulations)\b.{0,40}\b(prize|cash|amount|reward|lakh|crore)\b`)},
			{"refund_lure", regexp.MustCompile(`(?i)\b(refund|cashback)\b.{0,30}\b(pending|waiting|approved|process)\b`)},
		},
	},
	{
		name:   "credential_request",
		role:   roleCredential,
		weight: 0.03,
		patterns: []namedPattern{
			{"otp_request", regexp.MustCompile(`(?i)\b(share|send|give|tell|forward|reply with|provide|enter)\b.{0,40}\b(otp|one[- ]?time password|verification code)\b`)},
			{"pin_request", regexp.MustCompile(`(?i)\b(share|send|give|tell|provide|enter)\b.{0,40}\b(upi pin|atm pin|pin|password|cvv)\b`)},
			{"account_details_request", regexp.MustCompile(`(?i)\b(share|send|give|provide|confirm)\b.{0,40}\b(account number|card number|account details|bank details)\b`)},
			{"kyc_demand", regexp.MustCompile(`(?i)\b(complete|update|renew)\b.{0,20}\bkyc\b`)},
			{"verify_demand", regexp.MustCompile(`(?i)\bverify\b.{0,30}\b(identity|account|details|immediately|now)\b`)},
			{"login_link_demand", regexp.MustCompile(`(?i)\b(click|open|visit|login)\b.{0,30}\b(link|here|below)\b`)},
			{"payment_demand", regexp.MustCompile(`(?i)\b(pay|transfer|send)\b.{0,30}\b(fee|charges|amount|rs\.?|rupees|₹)\b`)},
		},
	},
}

// indicatorLayer declares a scam when pressure and a credential/payment
// request co-occur in the same message. Either family alone is not decisive:
// urgency without an ask is marketing, an ask without pressure goes to the
// contextual layer.
type indicatorLayer struct{}

func (l *indicatorLayer) Name() string { return "strong_indicators" }

func (l *indicatorLayer) Evaluate(_ context.Context, in Input) (Verdict, bool) {
	var matched []string
	var pressure, credential int
	var extraWeight float64

	for _, group := range indicatorGroups {
		for _, p := range group.patterns {
			if !p.re.MatchString(in.Latest) {
				continue
			}
			matched = append(matched, p.name)
			extraWeight += group.weight
			switch group.role {
			case rolePressure:
				pressure++
			case roleCredential:
				credential++
			}
		}
	}

	if pressure == 0 || credential == 0 {
		return Verdict{}, false
	}

	// Two matches are the floor for decisiveness; everything beyond raises
	// confidence toward the cap.
	confidence := 0.85 + extraWeight - float64(2)*0.02
	if confidence < 0.85 {
		confidence = 0.85
	}
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Verdict{
		IsScam:          true,
		Confidence:      confidence,
		ScamType:        classifyScamType(in.Latest),
		DecidedBy:       l.Name(),
		MatchedPatterns: matched,
	}, true
}

// classifyScamType picks the dominant fraud category from the message text.
func classifyScamType(text string) ScamType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "upi") || strings.Contains(lower, "paytm") ||
		strings.Contains(lower, "phonepe") || strings.Contains(lower, "gpay"):
		return ScamTypeUPIFraud
	case strings.Contains(lower, "http://") || strings.Contains(lower, "https://") ||
		strings.Contains(lower, "click") || strings.Contains(lower, "login"):
		return ScamTypePhishing
	case strings.Contains(lower, "account") || strings.Contains(lower, "bank") ||
		strings.Contains(lower, "kyc") || strings.Contains(lower, "card"):
		return ScamTypeBankFraud
	default:
		return ScamTypeGeneral
	}
}
