package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/eommap/internal/cli"
	"github.com/JonMunkholm/eommap/internal/core"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("eommap failed", errorAttrs(err)...)
		os.Exit(1)
	}
}

// errorAttrs adds the mapped user message only for errors with a known code;
// anything else would just read "unexpected error".
func errorAttrs(err error) []any {
	attrs := []any{"error", err}
	if core.IsUserFacing(err) {
		attrs = append(attrs, "message", core.FormatUserError(err))
	}
	return attrs
}
