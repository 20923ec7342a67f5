package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errNotMember = errors.New("you are not a member of this group")
	errNotAdmin  = errors.New("only group admins can do this")

	errMemberNotFound    = errors.New("member not found in this group")
	errMemberEmailExists = errors.New("a member with this email already exists in the group")
)

// toConnectError maps domain errors to Connect codes. Errors that already
// carry a code pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, calculator.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotMember), errors.Is(err, errNotAdmin):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// fail logs a failed operation and returns the error as a Connect error.
// Internal faults log at ERROR, caller mistakes at WARN.
func fail(logger *slog.Logger, op string, err error, args ...any) error {
	err = toConnectError(err)
	args = append(args, "error", err)
	if connect.CodeOf(err) == connect.CodeInternal {
		logger.Error(op+" failed", args...)
	} else {
		logger.Warn(op+" rejected", args...)
	}
	return err
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func failedPrecondition(format string, args ...any) error {
	return connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf(format, args...))
}

// actingUser returns the authenticated user ID placed in ctx by the auth interceptor.
func actingUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, *models.Member, error) {
	if groupID == "" {
		return nil, nil, invalidArgument("group id is required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	member, ok := group.FindMember(userID)
	if !ok {
		return nil, nil, errNotMember
	}
	return group, member, nil
}
