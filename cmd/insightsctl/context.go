package main

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/app"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *zap.Logger
	app    *app.App
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		logger, err := app.NewLogger(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

// withApp builds the full pipeline once per invocation
func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if c.app == nil {
		a, err := app.Build(ctx, cfg, c.logger)
		if err != nil {
			return err
		}
		c.app = a
	}
	return fn(c.app)
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close(context.Background())
		c.app = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
