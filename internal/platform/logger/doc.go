// Package logger provides structured logging functionality for the application.
//
// It configures Go's standard library log/slog package from config.LogConfig
// and carries request-scoped loggers through context.Context. Output goes to
// stderr so that command output on stdout stays machine-readable.
package logger
