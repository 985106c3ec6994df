package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/feedterm/internal/database/repository"
	"github.com/jask/feedterm/internal/secrets"
)

// RepoPersister keeps the session in sqlite with the token sealed.
type RepoPersister struct {
	Repo *repository.SessionRepo
}

func (p RepoPersister) Load(ctx context.Context) (*Session, error) {
	row, err := p.Repo.Current(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	token, err := secrets.Open(row.Token)
	if err != nil {
		return nil, fmt.Errorf("open session token: %w", err)
	}
	s := &Session{Token: token, UserID: row.UserID, Username: row.Username}
	if row.AvatarURL != nil {
		s.AvatarURL = *row.AvatarURL
	}
	if row.ExpiresAt != nil {
		s.ExpiresAt = row.ExpiresAt.UTC()
	}
	return s, nil
}

func (p RepoPersister) Save(ctx context.Context, s Session) error {
	sealed, err := secrets.Seal(s.Token)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	row := repository.Session{Token: sealed, UserID: s.UserID, Username: s.Username}
	if s.AvatarURL != "" {
		avatar := s.AvatarURL
		row.AvatarURL = &avatar
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt.UTC().Truncate(time.Second)
		row.ExpiresAt = &exp
	}
	return p.Repo.Save(ctx, row)
}

func (p RepoPersister) Clear(ctx context.Context) error {
	return p.Repo.Clear(ctx)
}
