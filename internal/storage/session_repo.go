package storage

import (
	"context"
	"fmt"
)

// SessionRepo keeps lightweight ask-session history so clients can
// thread follow-up questions.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) EnsureSession(ctx context.Context, sessionID string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO ask_sessions (session_id) VALUES ($1)
ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()`, sessionID)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

func (r *SessionRepo) LogExchange(ctx context.Context, sessionID, question, answer string, refused bool) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO ask_exchanges (session_id, question, answer, refused)
VALUES ($1, $2, $3, $4)`, sessionID, question, answer, refused)
	if err != nil {
		return fmt.Errorf("log exchange: %w", err)
	}
	return nil
}

func (r *SessionRepo) RecentQuestions(ctx context.Context, sessionID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT question FROM ask_exchanges
WHERE session_id=$1
ORDER BY created_at DESC
LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent questions: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0, limit)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
