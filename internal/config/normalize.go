package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlans()
	c.normalizeSelection()
	c.normalizeQuestions()
	if err := c.normalizePitching(); err != nil {
		return err
	}
	if err := c.normalizeRender(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("HOMEWORK_BASE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.BaseDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		c.Paths.BaseDir = defaultBaseDir
	}
	var err error
	if c.Paths.BaseDir, err = expandPath(c.Paths.BaseDir); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = c.Paths.BaseDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePlans() {
	c.Plans.FreeDir = strings.TrimSpace(c.Plans.FreeDir)
	c.Plans.PaidDir = strings.TrimSpace(c.Plans.PaidDir)
}

func (c *Config) normalizeSelection() {
	c.Selection.LedgerFile = strings.TrimSpace(c.Selection.LedgerFile)
	if c.Selection.LedgerFile == "" {
		c.Selection.LedgerFile = defaultLedgerFile
	}

	exts := make([]string, 0, len(c.Selection.Extensions))
	seen := make(map[string]struct{}, len(c.Selection.Extensions))
	for _, ext := range c.Selection.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Selection.Extensions = exts

	c.Selection.ExcludeMarker = strings.TrimSpace(c.Selection.ExcludeMarker)
	c.Selection.CurrentDir = strings.TrimSpace(c.Selection.CurrentDir)
	if c.Selection.CurrentDir == "" {
		c.Selection.CurrentDir = defaultCurrentDir
	}
	c.Selection.PastDir = strings.TrimSpace(c.Selection.PastDir)
	if c.Selection.PastDir == "" {
		c.Selection.PastDir = defaultPastDir
	}
}

func (c *Config) normalizeQuestions() {
	c.Questions.QuestionsFile = strings.TrimSpace(c.Questions.QuestionsFile)
	if c.Questions.QuestionsFile == "" {
		c.Questions.QuestionsFile = defaultQuestionsFile
	}
	c.Questions.AskedFile = strings.TrimSpace(c.Questions.AskedFile)
	if c.Questions.AskedFile == "" {
		c.Questions.AskedFile = defaultAskedFile
	}
	c.Questions.CustomFile = strings.TrimSpace(c.Questions.CustomFile)
	if c.Questions.CustomFile == "" {
		c.Questions.CustomFile = defaultCustomFile
	}
}

func (c *Config) normalizePitching() error {
	if c.Pitching.Window == 0 {
		c.Pitching.Window = defaultPitchWindow
	}
	c.Pitching.DBPath = strings.TrimSpace(c.Pitching.DBPath)
	if c.Pitching.DBPath == "" {
		c.Pitching.DBPath = filepath.Join(c.Paths.StateDir, defaultPitchDBName)
		return nil
	}
	var err error
	if c.Pitching.DBPath, err = expandPath(c.Pitching.DBPath); err != nil {
		return fmt.Errorf("pitching.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() error {
	if c.Render.RowHeight <= 0 {
		c.Render.RowHeight = defaultRowHeight
	}
	if c.Render.HeaderHeight <= 0 {
		c.Render.HeaderHeight = defaultHeaderHeight
	}
	if c.Render.MinWidth <= 0 {
		c.Render.MinWidth = defaultMinWidth
	}
	if c.Render.JPEGQuality <= 0 {
		c.Render.JPEGQuality = defaultJPEGQuality
	}
	c.Render.FontPath = strings.TrimSpace(c.Render.FontPath)
	if c.Render.FontPath == "" {
		return nil
	}
	var err error
	if c.Render.FontPath, err = expandPath(c.Render.FontPath); err != nil {
		return fmt.Errorf("render.font_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
