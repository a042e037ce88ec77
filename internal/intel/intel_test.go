package intel

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestMerge_UnionSemantics(t *testing.T) {
	acc := New()
	acc.Merge(Intelligence{PhoneNumbers: []string{"+91-9876543210"}, SuspiciousKeywords: []string{"otp"}})
	acc.Merge(Intelligence{PhoneNumbers: []string{"+91-9876543210", "+91-9123456780"}})

	want := []string{"+91-9876543210", "+91-9123456780"}
	if !reflect.DeepEqual(acc.PhoneNumbers, want) {
		t.Errorf("phones = %v, want %v", acc.PhoneNumbers, want)
	}
	if !reflect.DeepEqual(acc.SuspiciousKeywords, []string{"otp"}) {
		t.Errorf("keywords = %v", acc.SuspiciousKeywords)
	}
	if acc.Total() != 3 {
		t.Errorf("total = %d, want 3", acc.Total())
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := New()
	a.Merge(Intelligence{UPIIDs: []string{"x@ybl", "y@paytm"}})

	b := New()
	b.Merge(Intelligence{UPIIDs: []string{"y@paytm", "x@ybl"}})

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint depends on insertion order")
	}
}

func TestFingerprint_ChangesOnNewValue(t *testing.T) {
	acc := New()
	before := acc.Fingerprint()

	acc.Merge(Intelligence{BankAccounts: []string{"123456789012"}})
	if acc.Fingerprint() == before {
		t.Error("fingerprint unchanged after new intelligence")
	}
}

func TestFingerprint_CategoryTagged(t *testing.T) {
	// The same value in different categories must fingerprint differently.
	a := New()
	a.Merge(Intelligence{CaseIDs: []string{"REF-1001"}})

	b := New()
	b.Merge(Intelligence{OrderNumbers: []string{"REF-1001"}})

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("fingerprint ignores category membership")
	}
}

func TestNew_MarshalsEmptyCategoriesAsArrays(t *testing.T) {
	data, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("empty categories must encode as [], got %s", data)
	}
	for _, field := range []string{
		"bankAccounts", "upiIds", "phishingLinks", "phoneNumbers",
		"emailAddresses", "caseIds", "policyNumbers", "orderNumbers",
		"suspiciousKeywords",
	} {
		if !strings.Contains(string(data), `"`+field+`":[]`) {
			t.Errorf("missing empty %s in %s", field, data)
		}
	}
}

func TestHasActionable(t *testing.T) {
	acc := New()
	if acc.HasActionable() {
		t.Error("empty intelligence is not actionable")
	}

	acc.Merge(Intelligence{SuspiciousKeywords: []string{"urgent"}})
	if acc.HasActionable() {
		t.Error("keywords alone are not actionable")
	}

	acc.Merge(Intelligence{UPIIDs: []string{"fraud@ybl"}})
	if !acc.HasActionable() {
		t.Error("upi id should be actionable")
	}
}
