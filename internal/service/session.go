package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/auth"
)

var ErrInvalidEmail = errors.New("invalid email")

// LoginAPI is the part of the API the login flow uses.
type LoginAPI interface {
	DevLogin(ctx context.Context, email string) (api.AuthOutput, error)
}

// Sessions houses the login and logout actions surfaced through the TUI
// and the CLI.
type Sessions struct {
	API   LoginAPI
	Store *auth.Store
}

// Login exchanges an email for a session and makes it current.
func (s *Sessions) Login(ctx context.Context, email string) (auth.Session, error) {
	if s.API == nil || s.Store == nil {
		return auth.Session{}, fmt.Errorf("sessions: not configured")
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return auth.Session{}, ErrInvalidEmail
	}

	out, err := s.API.DevLogin(ctx, email)
	if err != nil {
		return auth.Session{}, err
	}
	sess := auth.Session{
		Token:     out.Token,
		UserID:    out.User.ID,
		Username:  out.User.Username,
		ExpiresAt: out.ExpiresAt,
	}
	if out.User.AvatarURL != nil {
		sess.AvatarURL = *out.User.AvatarURL
	}
	if err := s.Store.Login(ctx, sess); err != nil {
		return auth.Session{}, fmt.Errorf("store session: %w", err)
	}
	glog.Infof("[session]login %s\n", sess.Username)
	return sess, nil
}

// Logout forgets the current session.
func (s *Sessions) Logout(ctx context.Context) error {
	if s.Store == nil {
		return fmt.Errorf("sessions: not configured")
	}
	if sess, ok := s.Store.Session(); ok {
		glog.Infof("[session]logout %s\n", sess.Username)
	}
	return s.Store.Logout(ctx)
}
