package intel

import (
	"regexp"
	"strings"
)

// Engine performs staged, order-sensitive extraction of indicator categories
// from conversation text. Each stage claims its spans and masks them before
// the next stage runs, so a value extracted by one category can never be
// re-captured by a later one (an email is never also a UPI ID, a UPI local
// part is never also a phone number).
//
// The digit-run classification (phone vs bank account vs timestamp) is
// best-effort: it is driven by run length, leading digits and surrounding
// label context, and will misclassify adversarial inputs built to sit on the
// boundaries.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// stage is one extraction pass. Stages run in table order; earlier stages
// take precedence because they mask the spans they claim.
type stage struct {
	name string
	fn   func(text []byte, out *Intelligence)
}

var stages = []stage{
	{"emails", extractEmails},
	{"upi", extractUPI},
	{"urls", extractURLs},
	{"refcodes", extractRefCodes},
	{"phones", extractPhones},
	{"accounts", extractAccounts},
}

// Extract derives Intelligence from the concatenated session history.
// It is pure and idempotent: the same history always yields the same result.
// Keyword matching runs against the latest counterparty message only, per
// the keyword contract; every other category sees the full history.
func (e *Engine) Extract(fullHistory, latest string) Intelligence {
	out := New()

	masked := []byte(fullHistory)
	for _, st := range stages {
		st.fn(masked, &out)
	}

	out.SuspiciousKeywords = unionInto(out.SuspiciousKeywords, Keywords(latest))
	return out
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9._%+-]*@[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}`)
	upiRe   = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9._-]*@[A-Za-z][A-Za-z0-9.-]*`)
	urlRe   = regexp.MustCompile(`https?://[^\s<>"']+`)

	// Go regexp has no lookbehind, so the prefixed form captures its own
	// digit boundaries as context around group 1.
	prefixedPhoneRe = regexp.MustCompile(`(?:^|[^0-9])(\+?91[-\s]?[6-9][0-9]{9})(?:$|[^0-9])`)
	barePhoneRe     = regexp.MustCompile(`\b[6-9][0-9]{9}\b`)
	digitRunRe      = regexp.MustCompile(`\b[0-9]{9,18}\b`)

	accountLabelRe = regexp.MustCompile(`(?i)(?:a/c|acct|account|acc)(?:\s*(?:no|number|num))?\s*[.:#-]*\s*$`)

	caseRe       = regexp.MustCompile(`(?i)(?:case|complaint|ticket|reference|ref)\s*(?:id|no|number)?\s*[:#.]?\s*([A-Za-z]{2,6}-[A-Za-z0-9-]*[0-9][A-Za-z0-9-]*)`)
	policyRe     = regexp.MustCompile(`(?i)policy\s*(?:id|no|number)?\s*[:#.]?\s*([A-Za-z]{0,6}-?[0-9][A-Za-z0-9-]*)`)
	orderRe      = regexp.MustCompile(`(?i)order\s*(?:id|no|number)?\s*[:#.]?\s*([A-Za-z]{0,6}-?[0-9][A-Za-z0-9-]*)`)
	bareCaseRe   = regexp.MustCompile(`\b(?:REF|CASE|CMP)-[A-Z0-9-]*[0-9][A-Z0-9-]*\b`)
	barePolicyRe = regexp.MustCompile(`\bPOL-[A-Z0-9-]*[0-9][A-Z0-9-]*\b`)
	bareOrderRe  = regexp.MustCompile(`\bORD-[A-Z0-9-]*[0-9][A-Z0-9-]*\b`)
)

// freemailHandles are UPI-handle lookalikes that mark an ordinary mailbox
// rather than a payment provider.
var freemailHandles = map[string]bool{
	"gmail":      true,
	"yahoo":      true,
	"hotmail":    true,
	"outlook":    true,
	"rediffmail": true,
	"protonmail": true,
	"icloud":     true,
	"live":       true,
	"aol":        true,
}

// paymentMarkers flag a domain as payment-provider-like. A "local@domain"
// span whose domain carries one of these is a payment identifier even when
// it is otherwise shaped like an email address.
var paymentMarkers = []string{"upi", "bank", "pay"}

func extractEmails(text []byte, out *Intelligence) {
	for _, loc := range emailRe.FindAllIndex(text, -1) {
		match := string(text[loc[0]:loc[1]])
		domain := strings.ToLower(match[strings.LastIndexByte(match, '@')+1:])
		if hasPaymentMarker(domain) {
			continue // payment identifier in email clothing; stage 2 claims it
		}
		out.EmailAddresses = unionInto(out.EmailAddresses, []string{match})
		maskSpan(text, loc[0], loc[1])
	}
}

func extractUPI(text []byte, out *Intelligence) {
	for _, loc := range upiRe.FindAllIndex(text, -1) {
		match := string(text[loc[0]:loc[1]])
		handle := strings.ToLower(match[strings.LastIndexByte(match, '@')+1:])
		handle = strings.TrimRight(handle, ".")

		if strings.Contains(handle, ".") {
			// Dotted handles are email-domain shaped; only a payment marker
			// rescues them (e.g. "x@secure-bank.com").
			if !hasPaymentMarker(handle) {
				continue
			}
		} else if freemailHandles[handle] {
			continue
		}

		out.UPIIDs = unionInto(out.UPIIDs, []string{match})
		maskSpan(text, loc[0], loc[1])
	}
}

func extractURLs(text []byte, out *Intelligence) {
	for _, loc := range urlRe.FindAllIndex(text, -1) {
		trimmed := TrimURL(string(text[loc[0]:loc[1]]))
		if trimmed == "" {
			continue
		}
		out.PhishingLinks = unionInto(out.PhishingLinks, []string{trimmed})
		maskSpan(text, loc[0], loc[0]+len(trimmed))
	}
}

func extractRefCodes(text []byte, out *Intelligence) {
	extractLabeled := func(re *regexp.Regexp, dst *[]string) {
		for _, loc := range re.FindAllSubmatchIndex(text, -1) {
			if loc[2] < 0 {
				continue
			}
			code := string(text[loc[2]:loc[3]])
			*dst = unionInto(*dst, []string{code})
			maskSpan(text, loc[2], loc[3])
		}
	}
	extractBare := func(re *regexp.Regexp, dst *[]string) {
		for _, loc := range re.FindAllIndex(text, -1) {
			code := string(text[loc[0]:loc[1]])
			*dst = unionInto(*dst, []string{code})
			maskSpan(text, loc[0], loc[1])
		}
	}

	extractLabeled(caseRe, &out.CaseIDs)
	extractLabeled(policyRe, &out.PolicyNumbers)
	extractLabeled(orderRe, &out.OrderNumbers)
	extractBare(bareCaseRe, &out.CaseIDs)
	extractBare(barePolicyRe, &out.PolicyNumbers)
	extractBare(bareOrderRe, &out.OrderNumbers)
}

func extractPhones(text []byte, out *Intelligence) {
	for _, loc := range prefixedPhoneRe.FindAllSubmatchIndex(text, -1) {
		canonical, ok := CanonicalPhone(string(text[loc[2]:loc[3]]))
		if !ok {
			continue
		}
		out.PhoneNumbers = unionInto(out.PhoneNumbers, []string{canonical})
		maskSpan(text, loc[2], loc[3])
	}
	for _, loc := range barePhoneRe.FindAllIndex(text, -1) {
		canonical, ok := CanonicalPhone(string(text[loc[0]:loc[1]]))
		if !ok {
			continue
		}
		out.PhoneNumbers = unionInto(out.PhoneNumbers, []string{canonical})
		maskSpan(text, loc[0], loc[1])
	}
}

func extractAccounts(text []byte, out *Intelligence) {
	for _, loc := range digitRunRe.FindAllIndex(text, -1) {
		run := string(text[loc[0]:loc[1]])
		labeled := accountLabelRe.Match(text[maxInt(0, loc[0]-20):loc[0]])

		if looksLikeTimestamp(run) && !labeled {
			continue
		}
		// Phone stages already claimed valid mobile shapes; a surviving
		// 10-digit run is only an account when explicitly labelled.
		if len(run) == 10 && !labeled {
			continue
		}
		if !labeled && (len(run) < 11 || len(run) > 16) {
			continue
		}

		out.BankAccounts = unionInto(out.BankAccounts, []string{run})
		maskSpan(text, loc[0], loc[1])
	}
}

// looksLikeTimestamp reports whether a digit run has the shape of a Unix
// epoch in seconds (10 digits) or milliseconds (13 digits). Epochs from 2020
// through the 2030s start with 16, 17 or 18.
func looksLikeTimestamp(run string) bool {
	if len(run) != 10 && len(run) != 13 {
		return false
	}
	switch run[:2] {
	case "16", "17", "18":
		return true
	}
	return false
}

func hasPaymentMarker(domain string) bool {
	for _, m := range paymentMarkers {
		if strings.Contains(domain, m) {
			return true
		}
	}
	return false
}

// maskSpan blanks a claimed span in place, preserving offsets and token
// boundaries for the stages that follow.
func maskSpan(text []byte, start, end int) {
	for i := start; i < end && i < len(text); i++ {
		text[i] = ' '
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
