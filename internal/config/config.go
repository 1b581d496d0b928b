package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputDir      string `yaml:"output_dir"`
	APIBase        string `yaml:"api_base"`
	UserAgent      string `yaml:"user_agent"`
	PreferredGroup string `yaml:"preferred_group"`
	PageTimeout    int    `yaml:"page_timeout"` // seconds, page fetches only
	Debug          bool   `yaml:"debug"`
}

type Options struct {
	IgnoreConfig   bool
	Debug          bool
	OutputDir      string
	APIBase        string
	UserAgent      string
	PreferredGroup string
	PageTimeout    int
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:      ".",
		APIBase:        "https://cubari.moe",
		UserAgent:      "",
		PreferredGroup: "1",
		PageTimeout:    30,
		Debug:          false,
	}
}

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "cubarid")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cubarid")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cubarid")
}

func ConfigPath() string {
	return filepath.Join(ConfigRoot(), "config.yaml")
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged resolves the effective config: the config file when one
// exists, overlaid with whatever the CLI flags set. The returned
// string names the source, for debug output.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `cubarid config init` to create an actual config\n", nil
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, path, nil
}

func mergeConfig(c *Config, o Options) {
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.APIBase != "" {
		c.APIBase = o.APIBase
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.PreferredGroup != "" {
		c.PreferredGroup = o.PreferredGroup
	}
	if o.PageTimeout != 0 {
		c.PageTimeout = o.PageTimeout
	}
	if o.Debug {
		c.Debug = true
	}
}

func normalizeDefaults(c *Config) {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.APIBase == "" {
		c.APIBase = "https://cubari.moe"
	}
	if c.PreferredGroup == "" {
		c.PreferredGroup = "1"
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 30
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output_dir: %s\n", c.OutputDir)
	fmt.Printf(" -api_base: %s\n", c.APIBase)
	fmt.Printf(" -preferred_group: %s\n", c.PreferredGroup)
	fmt.Printf(" -page_timeout: %ds\n", c.PageTimeout)
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
}
