package repository

import (
	"context"
	"database/sql"
)

// SessionRepo handles the stored session. The table holds at most one row.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Current returns the stored session or nil when nobody is logged in.
func (r *SessionRepo) Current(ctx context.Context) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT token, user_id, username, avatar_url, expires_at, created_at FROM sessions WHERE id = 1`)
	var s Session
	if err := row.Scan(&s.Token, &s.UserID, &s.Username, &s.AvatarURL, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Save replaces the stored session.
func (r *SessionRepo) Save(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO sessions(id, token, user_id, username, avatar_url, expires_at, created_at)
	VALUES(1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 token=excluded.token, user_id=excluded.user_id, username=excluded.username,
	 avatar_url=excluded.avatar_url, expires_at=excluded.expires_at, created_at=CURRENT_TIMESTAMP;
	`, s.Token, s.UserID, s.Username, s.AvatarURL, s.ExpiresAt)
	return err
}

// Clear removes the stored session. Clearing an empty table is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}
