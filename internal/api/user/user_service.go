package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/vesmirov/fundhub/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
// Every write path validates the role/credential invariant before the
// repository is touched.
type UserService interface {
	// Admin-scoped operations
	ListUsers(ctx context.Context) ([]types.User, error)
	CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	// Self-scoped operations
	GetAccount(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, params types.UpdateAccountParams) (*types.User, error)

	// Public self-registration; always produces a REGISTERED user.
	SignUp(ctx context.Context, params types.SignUpParams) (*types.User, error)
}

// SessionInvalidator revokes every session a user holds and drops the
// cached identity the auth middleware resolves from. Implemented by the
// auth service.
type SessionInvalidator interface {
	InvalidateAllSessions(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger   *slog.Logger
	repo     UserRepo
	sessions SessionInvalidator
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, sessions SessionInvalidator, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger:   logger,
		repo:     repo,
		sessions: sessions,
	}
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// ListUsers returns every user, in creation order.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]types.User, error) {
	l := s.logger.With(slog.String("method", "ListUsers"))

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// CreateUser builds a candidate user from the admin payload, validates the
// role/credential invariant and persists it. Any role may be created here.
func (s *UserServiceImpl) CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "CreateUser", trace.WithAttributes(
		attribute.String("user.role", string(params.Role)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateUser"))

	candidate := types.User{
		Username:   params.Username,
		Email:      params.Email,
		TelegramID: params.TelegramID,
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Role:       params.Role,
		IsStaff:    params.IsStaff,
	}
	if params.Password != nil && *params.Password != "" {
		hashed, err := hashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		candidate.PasswordHash = &hashed
	}

	if ve := candidate.Validate(); ve != nil {
		l.WarnContext(ctx, "User validation failed", slog.Any("fields", ve.Fields))
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	created, err := s.repo.CreateUser(ctx, &candidate)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	l.InfoContext(ctx, "User created",
		slog.String("userID", created.ID.String()),
		slog.String("role", string(created.Role)),
	)
	span.SetStatus(codes.Ok, "user created")
	return created, nil
}

// GetUser retrieves an arbitrary user by id.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}

// UpdateUser applies an admin partial update on top of the stored state and
// re-validates the invariant before persisting.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateUser"), slog.String("userID", userID.String()))

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	prevRole, prevStaff := user.Role, user.IsStaff

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = params.Email
	}
	if params.Password != nil && *params.Password != "" {
		hashed, herr := hashPassword(*params.Password)
		if herr != nil {
			return nil, herr
		}
		user.PasswordHash = &hashed
	}
	if params.TelegramID != nil {
		user.TelegramID = *params.TelegramID
	}
	if params.FirstName != nil {
		user.FirstName = params.FirstName
	}
	if params.LastName != nil {
		user.LastName = params.LastName
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.IsStaff != nil {
		user.IsStaff = *params.IsStaff
	}

	if ve := user.Validate(); ve != nil {
		l.WarnContext(ctx, "User validation failed", slog.Any("fields", ve.Fields))
		return nil, ve
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		l.ErrorContext(ctx, "Failed to update user", slog.Any("error", err))
		return nil, err
	}

	// A role or staff change must take effect on the very next request,
	// so drop the cached identity and revoke every open session.
	if user.Role != prevRole || user.IsStaff != prevStaff {
		if err := s.sessions.InvalidateAllSessions(ctx, userID); err != nil {
			l.WarnContext(ctx, "Failed to revoke sessions after role change", slog.Any("error", err))
		}
	}

	l.InfoContext(ctx, "User updated")
	return user, nil
}

// DeleteUser removes a user and, through the store's cascades, its profile,
// funds, transactions and budgets.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteUser"), slog.String("userID", userID.String()))

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		return err
	}

	if err := s.sessions.InvalidateAllSessions(ctx, userID); err != nil {
		l.WarnContext(ctx, "Failed to revoke sessions of deleted user", slog.Any("error", err))
	}

	l.InfoContext(ctx, "User deleted")
	return nil
}

// GetAccount retrieves the caller's own record. The id is always the
// authenticated identity, never client input.
func (s *UserServiceImpl) GetAccount(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching account: %w", err)
	}

	// Object-level check after self-scoping: the resolved record must belong
	// to the caller even though the query was keyed by the caller's own id.
	if user.ID != userID {
		return nil, types.ErrForbidden
	}
	return user, nil
}

// UpdateAccount applies the non-privileged field subset to the caller's own
// record. Role, staff status, email and telegram id are untouchable here.
func (s *UserServiceImpl) UpdateAccount(ctx context.Context, userID uuid.UUID, params types.UpdateAccountParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateAccount"), slog.String("userID", userID.String()))

	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.FirstName != nil {
		user.FirstName = params.FirstName
	}
	if params.LastName != nil {
		user.LastName = params.LastName
	}

	if ve := user.Validate(); ve != nil {
		l.WarnContext(ctx, "Account validation failed", slog.Any("fields", ve.Fields))
		return nil, ve
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		l.ErrorContext(ctx, "Failed to update account", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "Account updated")
	return user, nil
}

// SignUp creates a user from the public payload. The role is forced to
// REGISTERED and the staff flag stays off regardless of what the client sent.
func (s *UserServiceImpl) SignUp(ctx context.Context, params types.SignUpParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "SignUp")
	defer span.End()

	l := s.logger.With(slog.String("method", "SignUp"))

	candidate := types.User{
		Username:   params.Username,
		TelegramID: params.TelegramID,
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Role:       types.RoleRegistered,
	}
	if params.Email != "" {
		candidate.Email = &params.Email
	}
	if params.Password != "" {
		hashed, err := hashPassword(params.Password)
		if err != nil {
			return nil, err
		}
		candidate.PasswordHash = &hashed
	}

	if ve := candidate.Validate(); ve != nil {
		l.WarnContext(ctx, "Sign-up validation failed", slog.Any("fields", ve.Fields))
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	created, err := s.repo.CreateUser(ctx, &candidate)
	if err != nil {
		l.ErrorContext(ctx, "Failed to sign up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-up failed")
		return nil, err
	}

	l.InfoContext(ctx, "User signed up", slog.String("userID", created.ID.String()))
	span.SetStatus(codes.Ok, "user signed up")
	return created, nil
}
