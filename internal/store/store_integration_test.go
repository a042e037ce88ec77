//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/lure/internal/detect"
	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SnapshotUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := "integration-test-" + uuid.New().String()[:8]

	in := intel.New()
	in.Merge(intel.Intelligence{UPIIDs: []string{"fraud@ybl"}})

	now := time.Now().UTC()
	sess := &session.Session{
		ID:             sessionID,
		Intelligence:   in,
		Verdict:        &detect.Verdict{IsScam: true, Confidence: 0.9, ScamType: detect.ScamTypeUPIFraud, DecidedBy: "strong_indicators"},
		FirstMessageAt: now.Add(-time.Minute),
		LastMessageAt:  now,
		TurnsExchanged: 3,
		ReportsSent:    1,
	}

	if err := s.SaveSnapshot(ctx, sess); err != nil {
		t.Fatalf("first snapshot failed: %v", err)
	}

	// Same session again with advanced state must overwrite, not duplicate.
	sess.TurnsExchanged = 5
	sess.ReportsSent = 2
	if err := s.SaveSnapshot(ctx, sess); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}

	rows, err := s.RecentSessions(ctx, 200)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	var found int
	for _, r := range rows {
		if r.ID != sessionID {
			continue
		}
		found++
		if r.Turns != 5 || r.ReportsSent != 2 {
			t.Errorf("row not overwritten: %+v", r)
		}
		if r.ScamType != "upi_fraud" {
			t.Errorf("scam type = %q", r.ScamType)
		}
	}
	if found != 1 {
		t.Errorf("found %d rows for session, want 1", found)
	}
}
