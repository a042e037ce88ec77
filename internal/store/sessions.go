package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/session"
)

// SessionRow is the archived shape of a session, as served to ops queries.
type SessionRow struct {
	ID           string          `json:"id"`
	Turns        int             `json:"turns"`
	IsScam       bool            `json:"isScam"`
	Confidence   float64         `json:"confidence"`
	ScamType     string          `json:"scamType"`
	DecidedBy    string          `json:"decidedBy"`
	Intelligence json.RawMessage `json:"intelligence"`
	ReportsSent  int             `json:"reportsSent"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// SaveSnapshot upserts the session's current state. Called best-effort after
// every turn; the snapshot always overwrites, never appends.
func (s *Store) SaveSnapshot(ctx context.Context, sess *session.Session) error {
	intelJSON, err := json.Marshal(sess.Intelligence)
	if err != nil {
		return fmt.Errorf("marshal intelligence: %w", err)
	}

	var isScam bool
	var confidence float64
	scamType, decidedBy := "not_scam", ""
	if sess.Verdict != nil {
		isScam = sess.Verdict.IsScam
		confidence = sess.Verdict.Confidence
		scamType = string(sess.Verdict.ScamType)
		decidedBy = sess.Verdict.DecidedBy
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO lure_sessions (id, turns, is_scam, confidence, scam_type, decided_by, intelligence, first_message_at, last_message_at, reports_sent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (id)
		DO UPDATE SET
			turns = $2,
			is_scam = $3,
			confidence = $4,
			scam_type = $5,
			decided_by = $6,
			intelligence = $7,
			last_message_at = $9,
			reports_sent = $10,
			updated_at = now()`,
		sess.ID, sess.TurnsExchanged, isScam, confidence, scamType, decidedBy,
		intelJSON, sess.FirstMessageAt, sess.LastMessageAt, sess.ReportsSent,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// RecentSessions returns the most recently active archived sessions.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, turns, is_scam, confidence, scam_type, decided_by, intelligence, reports_sent, updated_at
		FROM lure_sessions
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Turns, &r.IsScam, &r.Confidence, &r.ScamType, &r.DecidedBy, &r.Intelligence, &r.ReportsSent, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return out, nil
}

var _ session.Archiver = (*Store)(nil)
