package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/models"
)

const bearerPrefix = "bearer "

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// Service runs the session lifecycle: login issues a token, logout revokes it.
type Service struct {
	users       db.UserRepository
	hasher      *Hasher
	tokens      *TokenManager
	revocations *RevocationList
}

func NewService(users db.UserRepository, hasher *Hasher, tokens *TokenManager, revocations *RevocationList) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, revocations: revocations}
}

// LoginUser is the user part of a login response.
type LoginUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type LoginResult struct {
	Message string    `json:"message"`
	User    LoginUser `json:"user"`
	Token   string    `json:"token"`
}

// Login checks the credentials and issues a token. Unknown emails, wrong
// passwords and inactive accounts all fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}

	ok, err := s.hasher.Compare(user.Password, password)
	if err != nil {
		logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("stored password hash is unusable")
		return nil, errInvalidCredentials
	}
	if !ok || !user.IsActive {
		return nil, errInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	return &LoginResult{
		Message: "Login successful",
		User:    loginUser(user),
		Token:   token,
	}, nil
}

func loginUser(u *models.User) LoginUser {
	return LoginUser{ID: u.ID.Hex(), Email: u.Email, FullName: u.FullName()}
}

// Logout revokes the bearer token in header. The token does not have to be
// valid; only a missing one is rejected.
func (s *Service) Logout(ctx context.Context, header string) error {
	raw := ExtractBearer(header)
	if h := strings.TrimSpace(header); raw == "" && !strings.EqualFold(h, strings.TrimSpace(bearerPrefix)) {
		raw = h
	}
	if raw == "" {
		return apperr.BadRequest("Token required")
	}
	if err := s.revocations.Revoke(ctx, raw); err != nil {
		return apperr.Internal("Logout failed", err)
	}
	return nil
}

// ExtractBearer returns the token of a "Bearer <token>" header, or "".
func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
