package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"-"`
}

type Service struct {
	repo     Repository
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time
	log      *logrus.Entry
}

func NewService(repo Repository, secret string, ttl time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.WithField("component", "auth"),
	}
}

// Authenticate verifies the credentials and opens a new session. It returns
// the signed token to hand to the client.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, apperr.ErrUnauthorized
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("username", username).Warn("failed login attempt")
		return "", nil, apperr.ErrUnauthorized
	}

	now := s.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return "", nil, err
	}

	token, err := GenerateToken(s.secret, user, sess)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "session_id": sess.ID}).Info("user logged in")
	return token, sess, nil
}

// Resolve turns a token back into a principal. Revoked, expired or unknown
// sessions are rejected with apperr.ErrUnauthorized.
func (s *Service) Resolve(ctx context.Context, token string) (*Principal, error) {
	now := s.now()
	claims, err := ParseToken(s.secret, token, now)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}

	sess, err := s.repo.FindSession(ctx, claims.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !sess.Active(now) || sess.UserID != claims.UserID {
		return nil, apperr.ErrUnauthorized
	}

	return &Principal{
		UserID:    sess.User.ID,
		Username:  sess.User.Username,
		IsAdmin:   sess.User.IsAdmin,
		SessionID: sess.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.repo.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return err
	}
	s.log.WithField("session_id", sessionID).Info("session revoked")
	return nil
}

// EnsureAdmin creates the bootstrap administrator unless a user with that
// username already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}
	s.log.WithField("username", username).Info("admin user seeded")
	return nil
}
