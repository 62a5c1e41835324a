package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"odea/internal/archive"
	"odea/internal/config"
	"odea/internal/diag"
	"odea/internal/logging"
	"odea/internal/scanindex"
	"odea/internal/workflow"
)

type commandContext struct {
	configFlag *string
	rootFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	sessionOnce sync.Once
	session     *session
	sessionErr  error
}

// session bundles everything a command operating on an archive needs. The
// writer lock is held for the rest of the invocation.
type session struct {
	root     string
	lock     *archive.Lock
	index    *scanindex.Store
	reporter *diag.Reporter
	wf       *workflow.Workflow
}

func newCommandContext(configFlag, rootFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		rootFlag:   rootFlag,
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// ensureSession resolves the enclosing archive root, takes its writer lock,
// and wires the workflow. Commands that only read configuration never call
// this, so they work outside an archive.
func (c *commandContext) ensureSession() (*session, error) {
	c.sessionOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.sessionErr = err
			return
		}

		start := "."
		if c.rootFlag != nil && strings.TrimSpace(*c.rootFlag) != "" {
			start = strings.TrimSpace(*c.rootFlag)
		}
		root, err := archive.FindRoot(start)
		if err != nil {
			c.sessionErr = err
			return
		}

		lock, err := archive.AcquireLock(root)
		if err != nil {
			c.sessionErr = err
			return
		}

		var index *scanindex.Store
		if cfg.Index.Enabled {
			index, err = scanindex.Open(root)
			if err != nil {
				_ = lock.Release()
				c.sessionErr = err
				return
			}
		}

		logger := c.logger()
		reporter := diag.NewReporter(logger)
		c.session = &session{
			root:     root,
			lock:     lock,
			index:    index,
			reporter: reporter,
			wf:       workflow.New(root, cfg, logger, reporter, index),
		}
	})
	return c.session, c.sessionErr
}

func (c *commandContext) close() {
	if c.session == nil {
		return
	}
	_ = c.session.index.Close()
	_ = c.session.lock.Release()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		if cur.Annotations != nil && cur.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
