package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskbox-app/taskbox/internal/apperror"
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*User, error)
	GoogleLogin(ctx context.Context, input GoogleInput) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// authService implements AuthService with bcrypt hashing.
type authService struct {
	repo       UserRepository
	bcryptCost int
}

// NewAuthService creates a new auth service. bcryptCost tunes how slow
// password hashing is; higher costs resist brute force better.
func NewAuthService(repo UserRepository, bcryptCost int) AuthService {
	return &authService{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new local account. It validates the required fields,
// checks email uniqueness, hashes the password with bcrypt, and persists
// the user with the default role.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" || name == "" {
		return nil, apperror.NewBadRequest("email, password and name are required")
	}

	// Check if email is already taken before doing expensive hashing.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}
	hashStr := string(hash)

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hashStr,
		DisplayName:  name,
		Role:         RoleUser,
		LastLoginAt:  &now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a local account by email and password. The failure
// message never distinguishes "no such user" from "wrong password" — both
// surface as the same generic 401 so the endpoint cannot be used to probe
// which emails are registered.
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperror.NewBadRequest("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("Invalid credentials")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	// Federated-only accounts have no hash to compare against; they fail
	// with the same generic message as a wrong password.
	if user.PasswordHash == nil {
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)) != nil {
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	// Update the user's last login timestamp (fire-and-forget, non-critical).
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GoogleLogin finds or creates a user by their federated subject id. A new
// account is created with no password set; an existing one gets its last
// login refreshed. Either way the caller issues a session.
func (s *authService) GoogleLogin(ctx context.Context, input GoogleInput) (*User, error) {
	if input.Sub == "" || input.Email == "" {
		return nil, apperror.NewBadRequest("Missing required user data (sub, email)")
	}

	user, err := s.repo.FindByGoogleID(ctx, input.Sub)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, apperror.NewInternal(fmt.Errorf("finding user by google id: %w", err))
	}

	if user == nil || apperror.IsNotFound(err) {
		sub := input.Sub
		now := time.Now().UTC()
		user = &User{
			ID:          uuid.NewString(),
			Email:       strings.ToLower(strings.TrimSpace(input.Email)),
			GoogleID:    &sub,
			DisplayName: strings.TrimSpace(input.Name),
			AvatarURL:   input.Picture,
			Role:        RoleUser,
			LastLoginAt: &now,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("creating federated user: %w", err))
		}

		slog.Info("federated user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
		return user, nil
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return user, nil
}

// ChangePassword replaces the stored password hash after verifying the
// current password. Federated-only accounts cannot change a password that
// was never established. Outstanding session tokens stay valid for their
// original lifetime — validity is signature + expiry only.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperror.NewBadRequest("current and new password are required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("user not found")
		}
		return apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if user.PasswordHash == nil {
		return apperror.NewBadRequest("password login is not enabled for this account")
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(currentPassword)) != nil {
		return apperror.NewUnauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("updating password: %w", err))
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return nil
}
