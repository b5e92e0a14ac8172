package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"homework/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories the generator reads from and writes to.
type Paths struct {
	BaseDir   string `toml:"base_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Plans describes where students of each plan live and how much homework they get.
type Plans struct {
	FreeDir      string `toml:"free_dir"`
	PaidDir      string `toml:"paid_dir"`
	FreeCurrent  int    `toml:"free_current"`
	FreePast     int    `toml:"free_past"`
	PaidCurrent  int    `toml:"paid_current"`
	PaidPast     int    `toml:"paid_past"`
	PaidQuestion bool   `toml:"paid_question"`
}

// Selection contains the fair-selection and folder enumeration settings.
type Selection struct {
	LedgerFile    string   `toml:"ledger_file"`
	Extensions    []string `toml:"extensions"`
	ExcludeMarker string   `toml:"exclude_marker"`
	CurrentDir    string   `toml:"current_dir"`
	PastDir       string   `toml:"past_dir"`
}

// Questions contains the open-ended question bank locations.
type Questions struct {
	QuestionsFile string `toml:"questions_file"`
	AskedFile     string `toml:"asked_file"`
	CustomFile    string `toml:"custom_file"`
}

// Pitching contains configuration for the flashcard drill history.
type Pitching struct {
	Window int    `toml:"window"`
	DBPath string `toml:"db_path"`
}

// Render contains layout settings for the homework sheet.
type Render struct {
	RowHeight    int    `toml:"row_height"`
	HeaderHeight int    `toml:"header_height"`
	MinWidth     int    `toml:"min_width"`
	JPEGQuality  int    `toml:"jpeg_quality"`
	FontPath     string `toml:"font_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for homework.
//
// Configuration sections by subsystem:
//   - Paths: base, output, state, and log directories
//   - Plans: student plan folders and per-plan homework targets
//   - Selection: usage ledger file name and image enumeration rules
//   - Questions: question bank and per-student asked history
//   - Pitching: drill history window and database location
//   - Render: homework sheet layout
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Plans     Plans     `toml:"plans"`
	Selection Selection `toml:"selection"`
	Questions Questions `toml:"questions"`
	Pitching  Pitching  `toml:"pitching"`
	Render    Render    `toml:"render"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/homework/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("homework.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the generator writes to. The base
// directory is never created: a missing base directory means zero students.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PlanDir resolves a plan folder name against the base directory.
func (c *Config) PlanDir(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.BaseDir, name)
}

// QuestionsPath returns the absolute path of the shared question bank.
func (c *Config) QuestionsPath() string {
	return c.resolveInBase(c.Questions.QuestionsFile)
}

// AskedPath returns the absolute path of the per-student asked-question history.
func (c *Config) AskedPath() string {
	return c.resolveInBase(c.Questions.AskedFile)
}

// LockPath returns the lock file guarding batch generation runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "generate.lock")
}

func (c *Config) resolveInBase(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.BaseDir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path, creating
// its directory. An existing file is replaced atomically.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
