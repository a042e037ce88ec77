package detect

import (
	"context"
	"testing"
)

func TestNotificationLayer(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		decisive bool
	}{
		{
			name:     "plain otp disclosure clears",
			latest:   "Your OTP is 456789 for logging in to NetBanking",
			decisive: true,
		},
		{
			name:     "reversed otp shape clears",
			latest:   "456789 is your OTP for the transaction",
			decisive: true,
		},
		{
			name:     "delivery update clears",
			latest:   "Your parcel has been shipped and will arrive Tuesday",
			decisive: true,
		},
		{
			name:     "credit alert clears",
			latest:   "Rs. 5000 has been credited to your account ending 1234",
			decisive: true,
		},
		{
			name:     "recharge confirmation clears",
			latest:   "Your recharge of Rs 299 was successful",
			decisive: true,
		},
		{
			name:     "imperative on sensitive token overrides otp shape",
			latest:   "Your OTP is 456789. Share now to unblock account.",
			decisive: false,
		},
		{
			name:     "reply-with imperative overrides",
			latest:   "Your verification code is 9921. Reply with the code to confirm.",
			decisive: false,
		},
		{
			name:     "no notification shape continues",
			latest:   "Hello sir, I am calling from the bank",
			decisive: false,
		},
	}

	layer := &notificationLayer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, decisive := layer.Evaluate(context.Background(), Input{Latest: tt.latest})
			if decisive != tt.decisive {
				t.Fatalf("decisive = %v, want %v", decisive, tt.decisive)
			}
			if decisive && verdict.IsScam {
				t.Errorf("notification layer returned scam verdict: %+v", verdict)
			}
		})
	}
}
