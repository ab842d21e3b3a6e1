package server

import (
	"io"
	"log/slog"

	"github.com/joseph-ayodele/billbot/internal/common"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func commonMemoryConfig() common.DatabaseConfig {
	return common.DatabaseConfig{Driver: "memory"}
}
