package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/phrazzld/stargazer/internal/app"
	"github.com/phrazzld/stargazer/internal/config"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/spf13/cobra"
)

// withApp loads configuration, builds the application for one command and
// closes it afterwards. Logs go to stderr so stdout stays machine readable.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.Application) error) (err error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx := logger.WithLogger(cmd.Context(), log)
	application, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, application)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
