package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"symposium/internal/discussion"
	"symposium/internal/gateway/session"
	"symposium/internal/selection"
)

var errUnknownParticipant = errors.New("unknown participant")

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, errUnknownParticipant):
		return connect.CodeNotFound
	case errors.Is(err, selection.ErrSelectionFull):
		return connect.CodeResourceExhausted
	case errors.Is(err, discussion.ErrBusy):
		return connect.CodeAborted
	case selection.IsValidationError(err), errors.Is(err, selection.ErrModeratorNotSelected):
		return connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}
	return connect.NewError(codeOf(err), err)
}
