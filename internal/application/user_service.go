package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/room-planner/internal/persistence"
)

const minPasswordLength = 8

// UserService registers accounts and serves profiles.
type UserService struct {
	users       persistence.UserRepository
	hash        PasswordHasher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users persistence.UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = HashPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hash: hash, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (user User, err error) {
	return s.create(ctx, "Register", input, false)
}

// RegisterAdmin creates an administrator account, or returns the existing
// account when the email is already registered. It backs catalog seeding.
func (s *UserService) RegisterAdmin(ctx context.Context, input RegisterInput) (user User, err error) {
	user, err = s.create(ctx, "RegisterAdmin", input, true)
	if errors.Is(err, ErrEmailTaken) {
		var existing persistence.User
		existing, err = s.users.GetUserByEmail(ctx, normalizeEmail(input.Email))
		if err != nil {
			return User{}, err
		}
		return userFromRecord(existing), nil
	}
	return user, err
}

func (s *UserService) create(ctx context.Context, operation string, input RegisterInput, admin bool) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := normalizeEmail(input.Email)
	logger := s.loggerWith(ctx, operation, "email", email)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to register user", err)
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateRegisterInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hash(input.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := s.now().UTC()
	record := persistence.User{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.users.CreateUser(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrEmailTaken
		}
		return
	}

	user = userFromRecord(record)
	return
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, principal Principal) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Profile", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to load profile", err)
		}
	}()

	var record persistence.User
	record, err = s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = fmt.Errorf("user %s: %w", principal.UserID, ErrNotFound)
		}
		return
	}
	user = userFromRecord(record)
	return
}

func validateRegisterInput(input RegisterInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		vErr.add("email", "email must be a valid address")
	}

	if input.Password == "" {
		vErr.add("password", "password is required")
	} else if utf8.RuneCountInString(input.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	return vErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userFromRecord(r persistence.User) User {
	return User{ID: r.ID, Name: r.Name, Email: r.Email, IsAdmin: r.IsAdmin, CreatedAt: r.CreatedAt}
}
