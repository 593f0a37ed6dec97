package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-planner/internal/persistence"
)

// AuthService exchanges credentials for bearer tokens and resolves tokens to principals.
type AuthService struct {
	users          persistence.UserRepository
	tokens         *TokenManager
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users persistence.UserRepository, tokens *TokenManager, verify PasswordVerifier) *AuthService {
	return NewAuthServiceWithLogger(users, tokens, verify, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users persistence.UserRepository, tokens *TokenManager, verify PasswordVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AuthService{users: users, tokens: tokens, verifyPassword: verify, logger: defaultLogger(logger)}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "login failed", err)
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var record persistence.User
	record, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if verr := s.verifyPassword(record.PasswordHash, params.Password); verr != nil {
		err = ErrInvalidCredentials
		return
	}

	user := userFromRecord(record)
	var token string
	token, result.ExpiresAt, err = s.tokens.Issue(Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		return
	}
	result.Token = token
	result.User = user
	return
}

// Authenticate resolves a bearer token. The account must still exist and its
// current admin flag wins over the one in the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var claimed Principal
	claimed, err = s.tokens.Parse(token)
	if err != nil {
		s.loggerWith(ctx, "Authenticate").DebugContext(ctx, "token rejected", "error", err)
		return
	}

	var record persistence.User
	record, err = s.users.GetUser(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		logFailure(ctx, s.loggerWith(ctx, "Authenticate", "principal_id", claimed.UserID), "user lookup failed", err)
		return
	}

	principal = Principal{UserID: record.ID, IsAdmin: record.IsAdmin}
	return
}
