package controller

import (
	"log/slog"

	"task-manager/internal/errors"
)

// userMessage converts err into the text shown to the user, logging
// failures that are not the user's fault
func userMessage(logger *slog.Logger, op string, err error) string {
	if errors.ShouldLogError(err) {
		attrs := []any{"op", op, "code", errors.GetErrorCode(err), "error", err}
		if appErr, ok := errors.AsAppError(err); ok {
			if storageOp, ok := appErr.GetContext("operation"); ok {
				attrs = append(attrs, "storage_op", storageOp)
			}
		}
		logger.Error("operation failed", attrs...)
	}
	return errors.GetUserMessage(err)
}
