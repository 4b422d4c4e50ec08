package lob

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger allows callers to redirect engine diagnostics to their own
// structured logger. The engine never logs above Debug on the matching hot
// path; Error is reserved for ArenaExhausted.
func SetLogger(l *slog.Logger) {
	logger = l
}
