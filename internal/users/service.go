// Package users implements the privileged account functions: creating staff
// accounts and deleting them by email.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"circulyte-backend/internal/apperr"
	"circulyte-backend/internal/audit"
	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"go.uber.org/zap"
)

// Caller identifies who invoked a function. A zero Caller is unauthenticated.
type Caller struct {
	ID    string
	Email string
}

type CreateUserRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type CreateUserResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UID     string `json:"uid"`
}

type DeleteUserResult struct {
	Message string `json:"message"`
}

type Service struct {
	users          store.UserStore
	audit          *audit.Service
	broker         events.Broker
	protectedEmail string
	logger         *zap.Logger
}

func NewService(users store.UserStore, auditSvc *audit.Service, broker events.Broker, protectedEmail string, logger *zap.Logger) *Service {
	return &Service{
		users:          users,
		audit:          auditSvc,
		broker:         broker,
		protectedEmail: normalizeEmail(protectedEmail),
		logger:         logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) CreateNewUser(ctx context.Context, caller Caller, req CreateUserRequest) (*CreateUserResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" || req.Role == "" {
		return nil, apperr.New(apperr.InvalidArgument, "The function must be called with 'email', 'password', and 'role' arguments.")
	}
	if len(req.Password) < auth.MinPasswordLen {
		return nil, apperr.New(apperr.InvalidArgument, "Password must be at least 6 characters long.")
	}
	if !req.Role.Valid() {
		return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("Unknown role %q.", req.Role))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "An unexpected error occurred.", err)
	}

	user := models.User{Email: email, PasswordHash: hash, Role: req.Role}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.AlreadyExists, "This email address is already in use.")
		}
		s.logger.Error("create user failed", zap.String("email", email), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "An unexpected error occurred.", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		UserID:      caller.ID,
		UserEmail:   caller.Email,
		EntityType:  "user",
		EntityID:    user.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Created user %s with role %s", email, req.Role),
		After:       user,
	})
	s.publish(ctx, "create", user.ID)

	return &CreateUserResult{
		Status:  "success",
		Message: fmt.Sprintf("Successfully created user %s with role %s.", email, req.Role),
		UID:     user.ID,
	}, nil
}

// DeleteUser removes every account with the given email. The protected admin
// address is refused before the store is touched.
func (s *Service) DeleteUser(ctx context.Context, caller Caller, email string) (*DeleteUserResult, error) {
	if caller.ID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "You must be logged in.")
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Email is required.")
	}
	if email == s.protectedEmail {
		return nil, apperr.New(apperr.PermissionDenied, "The main admin account cannot be deleted.")
	}

	before, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("User with email %s not found.", email))
	}
	if err != nil {
		s.logger.Error("lookup user failed", zap.String("email", email), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "An error occurred. Check function logs.", err)
	}

	n, err := s.users.DeleteUsersByEmail(ctx, email)
	if err != nil {
		s.logger.Error("delete user failed", zap.String("email", email), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "An error occurred. Check function logs.", err)
	}
	if n == 0 {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("User with email %s not found.", email))
	}
	s.logger.Info("deleted user", zap.String("email", email), zap.Int64("documents", n))

	s.audit.Record(ctx, audit.LogOptions{
		UserID:      caller.ID,
		UserEmail:   caller.Email,
		EntityType:  "user",
		EntityID:    before.ID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Deleted user %s", email),
		Before:      before,
	})
	s.publish(ctx, "delete", before.ID)

	return &DeleteUserResult{Message: fmt.Sprintf("Successfully deleted user %s", email)}, nil
}

// List returns every account except the protected admin.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if normalizeEmail(u.Email) == s.protectedEmail {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, action, id string) {
	if s.broker == nil {
		return
	}
	if err := events.PublishChange(ctx, s.broker, events.TopicUsersChanged, action, id); err != nil {
		s.logger.Warn("publish user change failed", zap.Error(err))
	}
}
