package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DirName           = ".mailsort"
	FileName          = "config.yaml"
	DefaultSessionKey = "email_classification_session"

	StorageSQLite = "sqlite"
	StorageFile   = "file"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Stderr bool   `yaml:"stderr"`
}

type IngestConfig struct {
	Concurrency int    `yaml:"concurrency"`
	JSONPath    string `yaml:"json_path"`
}

type Config struct {
	Workspace    string            `yaml:"-"`
	Storage      string            `yaml:"storage"`
	DBPath       string            `yaml:"db_path"`
	StateDir     string            `yaml:"state_dir"`
	SessionKey   string            `yaml:"session_key"`
	ExportDir    string            `yaml:"export_dir"`
	ExportFormat string            `yaml:"export_format"`
	Log          LogConfig         `yaml:"log"`
	Ingest       IngestConfig      `yaml:"ingest"`
	Shortcuts    map[string]string `yaml:"shortcuts"`
}

// DefaultShortcuts maps keys to the three labels offered by the classify view.
func DefaultShortcuts() map[string]string {
	return map[string]string{
		"1": "spam",
		"2": "promotional",
		"3": "legitimate",
		"s": "spam",
		"p": "promotional",
		"l": "legitimate",
	}
}

func Defaults(workspace string) Config {
	stateDir := filepath.Join(workspace, DirName)
	return Config{
		Workspace:    workspace,
		Storage:      StorageSQLite,
		DBPath:       filepath.Join(stateDir, "mailsort.db"),
		StateDir:     filepath.Join(stateDir, "state"),
		SessionKey:   DefaultSessionKey,
		ExportDir:    workspace,
		ExportFormat: FormatCSV,
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(stateDir, "mailsort.log"),
		},
		Ingest: IngestConfig{
			Concurrency: 4,
			JSONPath:    "$",
		},
		Shortcuts: DefaultShortcuts(),
	}
}

// New returns the workspace defaults overlaid with <workspace>/.mailsort/config.yaml
// when that file exists.
func New(workspace string) (Config, error) {
	if strings.TrimSpace(workspace) == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	cfg := Defaults(workspace)
	path := filepath.Join(workspace, DirName, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	// A configured shortcuts map replaces the defaults instead of merging.
	cfg.Shortcuts = nil
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Workspace = workspace
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("unsupported storage %q", c.Storage)
	}
	switch c.ExportFormat {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unsupported export format %q", c.ExportFormat)
	}
	if strings.TrimSpace(c.SessionKey) == "" {
		return fmt.Errorf("session key is required")
	}
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest concurrency must be at least 1")
	}
	for k, label := range c.Shortcuts {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("shortcut key must not be empty")
		}
		if !slices.Contains(shortcutLabels, strings.ToLower(strings.TrimSpace(label))) {
			return fmt.Errorf("shortcut %q: unknown label %q", k, label)
		}
	}
	return nil
}

// shortcutLabels mirrors the categories an annotator can assign.
var shortcutLabels = []string{"spam", "promotional", "legitimate", "notification", "receipt"}

// resolvePaths anchors relative paths from the config file at the workspace.
func (c *Config) resolvePaths() {
	for _, p := range []*string{&c.DBPath, &c.StateDir, &c.ExportDir, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Workspace, *p)
		}
	}
	if len(c.Shortcuts) == 0 {
		c.Shortcuts = DefaultShortcuts()
	}
}
