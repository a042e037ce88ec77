package detect

import (
	"context"
	"regexp"
)

// Template shapes of benign system notifications.
var notificationShapes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byour (otp|one[- ]?time password|verification code|security code) (is|:)\s*[0-9]{4,8}\b`),
	regexp.MustCompile(`(?i)\b[0-9]{4,8} is your (otp|one[- ]?time password|verification code)\b`),
	regexp.MustCompile(`(?i)\byour (order|parcel|package|shipment)\b.*\b(shipped|dispatched|delivered|out for delivery|arriving)\b`),
	regexp.MustCompile(`(?i)\b(has been|was) (credited|debited) (to|from) your account\b`),
	regexp.MustCompile(`(?i)\byour (recharge|bill payment|payment) (of|was) .*\b(successful|received)\b`),
}

// Imperative action verbs directed at the recipient, and the sensitive
// tokens they must not be applied to. A message that discloses a code AND
// asks the recipient to act on one is not a notification, whatever shape it
// has — that combination is the classic OTP-relay scam.
var (
	imperativeVerbRe = regexp.MustCompile(`(?i)\b(share|send|give|tell|forward|reply with|enter|provide|submit|confirm)\b`)
	sensitiveTokenRe = regexp.MustCompile(`(?i)\b(otp|code|pin|password|cvv|account number|account|card number|details)\b`)
)

// notificationLayer recognises purely informational system messages. It is
// decisive only when the notification shape matches and no imperative is
// aimed at a sensitive token; the imperative override wins otherwise.
type notificationLayer struct{}

func (l *notificationLayer) Name() string { return "automated_notification" }

func (l *notificationLayer) Evaluate(_ context.Context, in Input) (Verdict, bool) {
	var shape string
	for _, re := range notificationShapes {
		if re.MatchString(in.Latest) {
			shape = re.String()
			break
		}
	}
	if shape == "" {
		return Verdict{}, false
	}

	if imperativeVerbRe.MatchString(in.Latest) && sensitiveTokenRe.MatchString(in.Latest) {
		return Verdict{}, false // imperative override
	}

	return Verdict{
		IsScam:          false,
		Confidence:      0.75,
		ScamType:        ScamTypeNone,
		DecidedBy:       l.Name(),
		MatchedPatterns: []string{"automated_notification_shape"},
	}, true
}
