package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlans(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validatePitching(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlans() error {
	if c.Plans.FreeDir == "" && c.Plans.PaidDir == "" {
		return errors.New("plans.free_dir or plans.paid_dir must be set")
	}
	targets := map[string]int{
		"plans.free_current": c.Plans.FreeCurrent,
		"plans.free_past":    c.Plans.FreePast,
		"plans.paid_current": c.Plans.PaidCurrent,
		"plans.paid_past":    c.Plans.PaidPast,
	}
	for key, value := range targets {
		if value < 0 {
			return fmt.Errorf("%s must be zero or greater", key)
		}
	}
	return nil
}

func (c *Config) validateSelection() error {
	if strings.ContainsAny(c.Selection.LedgerFile, `/\`) || c.Selection.LedgerFile != filepath.Base(c.Selection.LedgerFile) {
		return fmt.Errorf("selection.ledger_file must be a bare file name, got %q", c.Selection.LedgerFile)
	}
	if len(c.Selection.Extensions) == 0 {
		return errors.New("selection.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validatePitching() error {
	if c.Pitching.Window < 1 {
		return errors.New("pitching.window must be at least 1")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.JPEGQuality > 100 {
		return errors.New("render.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
