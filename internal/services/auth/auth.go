// Package auth contains the registration, login and token validation logic.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/password"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

var (
	// ErrValidation is returned when a required field is missing.
	ErrValidation = errors.New("name, email, and password are required")
	// ErrPasswordTooLong is returned when the password exceeds password.MaxLength bytes.
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", password.MaxLength)
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository is the credential store used by the service.
type UserRepository interface {
	// CreateUser stores the user and returns its id.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail returns the user including its password hash.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Session is the outcome of a successful registration or login.
type Session struct {
	Token string
	User  models.User
}

// Service registers users, checks credentials and validates bearer tokens.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService returns a Service.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register creates the user with a bcrypt-hashed password and issues a token
// bound to the new user id.
func (s *Service) Register(ctx context.Context, name, email, rawPassword, phone string) (*Session, error) {
	const op = "services.auth.Register"

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || rawPassword == "" {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, ErrValidation
	}
	if len(rawPassword) > password.MaxLength {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, ErrPasswordTooLong
	}

	// fast path; the unique index on email decides under concurrency
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.IncRegistration(metrics.ResultConflict)
		return nil, ErrUserExists
	case !errors.Is(err, storage.ErrUserNotFound):
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if errors.Is(err, password.ErrTooLong) {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Phone:        strings.TrimSpace(phone),
	}
	uid, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrUserExists) {
		metrics.IncRegistration(metrics.ResultConflict)
		return nil, ErrUserExists
	}
	if err != nil {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UUID = uid
	user.PasswordHash = ""

	token, err := s.jwtMaker.GenerateToken(jwt.Identity{UserUID: uid})
	if err != nil {
		metrics.IncRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncRegistration(metrics.ResultSuccess)
	s.log.Info("user registered", slog.String("user_uid", uid))
	return &Session{Token: token, User: user}, nil
}

// Login checks the password and issues a token carrying the user id, name and email.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrUserNotFound) {
		metrics.IncLogin(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncLogin(metrics.ResultFailure)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		metrics.IncLogin(metrics.ResultFailure)
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Warn("stored password hash is unusable", slog.String("user_uid", user.UUID), sl.Err(err))
		}
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(jwt.Identity{
		UserUID: user.UUID,
		Name:    user.Name,
		Email:   user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncLogin(metrics.ResultSuccess)
	user.PasswordHash = ""
	return &Session{Token: token, User: *user}, nil
}

// ValidateToken verifies a bearer token and returns its claims. The returned error
// wraps jwt.ErrTokenExpired or jwt.ErrTokenInvalid.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.IncTokenRejected(metrics.ReasonExpired)
		} else {
			metrics.IncTokenRejected(metrics.ReasonInvalid)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}
