package intel

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Intelligence holds every indicator category accumulated over a session.
// Each slice behaves as an insertion-ordered set: values are unique and are
// only ever added, never removed or reclassified.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	EmailAddresses     []string `json:"emailAddresses"`
	CaseIDs            []string `json:"caseIds"`
	PolicyNumbers      []string `json:"policyNumbers"`
	OrderNumbers       []string `json:"orderNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// New returns an Intelligence with every category initialised to an empty
// slice so the JSON encoding is always `[]`, never `null`. The evaluator
// treats missing categories as a malformed payload.
func New() Intelligence {
	return Intelligence{
		BankAccounts:       []string{},
		UPIIDs:             []string{},
		PhishingLinks:      []string{},
		PhoneNumbers:       []string{},
		EmailAddresses:     []string{},
		CaseIDs:            []string{},
		PolicyNumbers:      []string{},
		OrderNumbers:       []string{},
		SuspiciousKeywords: []string{},
	}
}

// Merge unions other into i. Existing values are kept, new values are
// appended in first-seen order. Merge never removes anything, which is what
// keeps each category monotonically non-decreasing across a session.
func (i *Intelligence) Merge(other Intelligence) {
	i.BankAccounts = unionInto(i.BankAccounts, other.BankAccounts)
	i.UPIIDs = unionInto(i.UPIIDs, other.UPIIDs)
	i.PhishingLinks = unionInto(i.PhishingLinks, other.PhishingLinks)
	i.PhoneNumbers = unionInto(i.PhoneNumbers, other.PhoneNumbers)
	i.EmailAddresses = unionInto(i.EmailAddresses, other.EmailAddresses)
	i.CaseIDs = unionInto(i.CaseIDs, other.CaseIDs)
	i.PolicyNumbers = unionInto(i.PolicyNumbers, other.PolicyNumbers)
	i.OrderNumbers = unionInto(i.OrderNumbers, other.OrderNumbers)
	i.SuspiciousKeywords = unionInto(i.SuspiciousKeywords, other.SuspiciousKeywords)
}

// HasActionable reports whether any category that the evaluator scores is
// non-empty. Keywords alone are not actionable.
func (i *Intelligence) HasActionable() bool {
	return len(i.BankAccounts) > 0 ||
		len(i.UPIIDs) > 0 ||
		len(i.PhishingLinks) > 0 ||
		len(i.PhoneNumbers) > 0 ||
		len(i.EmailAddresses) > 0 ||
		len(i.CaseIDs) > 0 ||
		len(i.PolicyNumbers) > 0 ||
		len(i.OrderNumbers) > 0
}

// Total returns the number of extracted values across all categories.
func (i *Intelligence) Total() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhishingLinks) +
		len(i.PhoneNumbers) + len(i.EmailAddresses) + len(i.CaseIDs) +
		len(i.PolicyNumbers) + len(i.OrderNumbers) + len(i.SuspiciousKeywords)
}

// Fingerprint returns a stable hash of the accumulated intelligence. The
// notification policy compares fingerprints to decide whether a session has
// produced new information since the last report. Insertion order does not
// affect the result.
func (i *Intelligence) Fingerprint() string {
	h := sha256.New()
	for _, cat := range []struct {
		tag    string
		values []string
	}{
		{"bank", i.BankAccounts},
		{"upi", i.UPIIDs},
		{"link", i.PhishingLinks},
		{"phone", i.PhoneNumbers},
		{"email", i.EmailAddresses},
		{"case", i.CaseIDs},
		{"policy", i.PolicyNumbers},
		{"order", i.OrderNumbers},
		{"keyword", i.SuspiciousKeywords},
	} {
		sorted := append([]string(nil), cat.values...)
		sort.Strings(sorted)
		h.Write([]byte(cat.tag + ":" + strings.Join(sorted, ",") + ";"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func unionInto(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
