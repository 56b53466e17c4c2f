package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dietstat/internal/config"
	"dietstat/internal/logging"
	"dietstat/internal/pipeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// runLogger builds the logger for one command invocation and returns a
// context carrying a fresh run ID.
func (c *commandContext) runLogger(cmd *cobra.Command, cfg *config.Config) (context.Context, *slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	runID := uuid.NewString()
	ctx := logging.WithRunID(base, runID)
	logging.WithContext(ctx, logger).Debug("command started",
		logging.String("command", cmd.CommandPath()),
		logging.String("config", c.configPath),
		logging.Bool("config_file", c.configSeen),
	)
	return ctx, logger, nil
}

// logFailure records a failed run in the log with the operator hint and
// returns err unchanged.
func logFailure(ctx context.Context, logger *slog.Logger, eventType string, err error) error {
	attrs := []logging.Attr{logging.Error(err)}
	if hint := pipeline.Hint(err); hint != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
	}
	logging.ErrorWithContext(logging.WithContext(ctx, logger), "command failed", eventType, attrs...)
	return err
}

// expandFlag resolves a path flag the same way configuration paths are
// resolved. Empty values are returned unchanged.
func expandFlag(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	return config.ExpandPath(value)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
