package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"storyforge/internal/api"
	"storyforge/internal/config"
	"storyforge/internal/logging"
	"storyforge/internal/notifications"
	"storyforge/internal/oplock"
	"storyforge/internal/pipeline"
	"storyforge/internal/transition"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withReader opens the store read-only-style (no process lock) and hands the
// API facade to fn. The store is closed when fn returns.
func (c *commandContext) withReader(fn func(*api.ItemService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pipeline.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(api.NewItemService(store))
}

// withReadService opens the store without the write lock for read-only
// service queries.
func (c *commandContext) withReadService(fn func(*transition.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pipeline.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := transition.NewService(store)
	if err != nil {
		return err
	}
	return fn(svc)
}

// withWriter acquires the process write lock, opens the store, and builds the
// transition service with the configured notifier. The lock is released and
// the store closed when fn returns.
func (c *commandContext) withWriter(fn func(*pipeline.Store, *transition.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock, err := oplock.New(cfg)
	if err != nil {
		return err
	}
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	store, err := pipeline.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := transition.NewService(
		store,
		transition.WithNotifier(notifications.NewService(cfg)),
		transition.WithLogger(c.fileLogger(cfg)),
		transition.WithMaxBatchSize(cfg.Workflow.MaxBatchSize),
	)
	if err != nil {
		return err
	}
	return fn(store, svc)
}

// fileLogger writes structured logs to the configured log file only, keeping
// stdout free for command output.
func (c *commandContext) fileLogger(cfg *config.Config) *slog.Logger {
	if cfg == nil || cfg.Paths.LogDir == "" {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "storyforge.log")},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
