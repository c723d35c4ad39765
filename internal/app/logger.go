package app

import (
	"log/slog"
	"os"

	"github.com/delaydex/delaydex-backend/internal/logx"
)

// NewLogger returns the production logger: JSON on stdout at Info level.
func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logx.NewSlogAdapter(base)
}
