package errutil

import (
	"log/slog"
)

// LogMsg logs err at warning level with a message if it is not nil.
// Useful for deferred cleanup calls whose failure should not change control flow.
func LogMsg(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Warn(msg, allArgs...)
	}
}

// ReportError logs an unexpected error at error level.
// All unexpected errors funnel through here so a future error reporter only
// needs to hook one place.
func ReportError(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Error(msg, allArgs...)
	}
}
