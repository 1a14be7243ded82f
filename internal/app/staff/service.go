package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type Service struct {
	users      interfaces.UserRepository
	logger     logger.Logger
	bcryptCost int
}

// NewService returns a staff service hashing with cost; zero means
// bcrypt.DefaultCost.
func NewService(users interfaces.UserRepository, logger logger.Logger, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, logger: logger, bcryptCost: cost}
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *Service) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	user, err := domain.NewUser(in)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user_created", "User created", logger.RequestID(ctx), map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, cmd interfaces.UpdateUserCommand) (*domain.User, error) {
	if cmd.ID <= 0 {
		return nil, domain.NewValidationError("id", domain.CodeOutOfRange, fmt.Errorf("user id must be positive"))
	}
	patch, err := domain.NewUserPatch(cmd.Name, cmd.Role, cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var hash *string
	if patch.Password != nil {
		h, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	user, err := s.users.Update(ctx, cmd.ID, patch.Name, patch.Role, hash)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user_updated", "User updated", logger.RequestID(ctx), map[string]interface{}{
		"user_id":          user.ID,
		"role":             user.Role,
		"password_changed": hash != nil,
	})
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return domain.NewValidationError("id", domain.CodeOutOfRange, fmt.Errorf("user id must be positive"))
	}
	if id == actorID {
		return domain.NewValidationError("id", domain.CodeInvalidValue, domain.ErrDeleteSelf)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user_deleted", "User deleted", logger.RequestID(ctx), map[string]interface{}{
		"user_id":    id,
		"deleted_by": actorID,
	})
	return nil
}

// Authenticate returns the user without its hash. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	requestID := logger.RequestID(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug("login_failed", "Unknown email", requestID, map[string]interface{}{"email": email})
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("login_failed", "Password mismatch", requestID, map[string]interface{}{"email": email})
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info("login_succeeded", "User logged in", requestID, map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}
