package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
)

// Error kinds returned by the services. Handlers map them to HTTP statuses
// with errors.Is; the wrapped message is safe to show to the caller.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrTooLarge     = errors.New("too large")
)

// kindError keeps a caller facing message while matching its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

func invalidInput(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

func forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// validate runs the struct validator and turns failures into ErrInvalidInput.
func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	return nil
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidInput("invalid %s ID", what)
	}
	return id, nil
}

// loadActor re-reads the calling user so role changes apply immediately.
func loadActor(ctx context.Context, users repository.UserRepository, actorID string) (*entity.User, error) {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil, newError(ErrUnauthorized, "authentication required")
	}

	user, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", actorID, err)
	}
	if user == nil || !user.IsActive {
		return nil, newError(ErrUnauthorized, "authentication required")
	}
	return user, nil
}

func requireRole(user *entity.User, roles ...entity.UserRole) error {
	if slices.Contains(roles, user.Role) {
		return nil
	}
	return forbidden("insufficient permissions")
}
