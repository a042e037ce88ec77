//go:build integration

package hermes

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_PublishScamConfirmed(t *testing.T) {
	natsURL := skipWithoutNATS(t)

	client, err := NewClient(natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	// Subscribe with a raw connection; the lure client is publish-only.
	nc, err := nats.Connect(natsURL)
	if err != nil {
		t.Fatalf("raw connect failed: %v", err)
	}
	defer nc.Close()

	received := make(chan ScamConfirmedEvent, 1)
	sub, err := nc.Subscribe(SubjectScamConfirmed, func(m *nats.Msg) {
		var evt ScamConfirmedEvent
		json.Unmarshal(m.Data, &evt)
		received <- evt
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	evt := ScamConfirmedEvent{
		SessionID:  "integration-test",
		ScamType:   "upi_fraud",
		Confidence: 0.9,
		DecidedBy:  "strong_indicators",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := client.Publish(SubjectScamConfirmed, evt); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.SessionID != "integration-test" {
			t.Errorf("expected integration-test session, got %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
