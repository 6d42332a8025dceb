// Package testutil holds small helpers shared across test suites.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that drops everything. The services all
// take a *slog.Logger; tests that don't assert on log output pass this
// one so failures print only the test's own diagnostics.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
