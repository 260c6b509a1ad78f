// File path: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Failure policies applied when a narrative cannot be generated.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Config is the full runtime configuration. It is assembled from defaults,
// an optional YAML file and environment variables, in that order.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	LLM        LLMConfig        `yaml:"llm"`
	Report     ReportConfig     `yaml:"report"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// PathsConfig locates the input tables and the output document. Empty table
// paths are derived from Root using the standard study layout.
type PathsConfig struct {
	Root      string `yaml:"root"`
	Wellbeing string `yaml:"wellbeing"`
	Comfort   string `yaml:"comfort"`
	Materials string `yaml:"materials"`
	Delight   string `yaml:"delight"`
	Social    string `yaml:"social"`
	Output    string `yaml:"output"`
}

type LLMConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	Temperature   float64       `yaml:"temperature"`
	APIKey        string        `yaml:"-"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	Backoff       time.Duration `yaml:"backoff"`
	RatePerMinute float64       `yaml:"rate_per_minute"`
	Descriptors   string        `yaml:"descriptors"`
}

type ReportConfig struct {
	Title         string   `yaml:"title"`
	FailurePolicy string   `yaml:"failure_policy"`
	Formats       []string `yaml:"formats"`
	Font          string   `yaml:"font"`
	FontSize      int      `yaml:"font_size"`
}

// CatalogConfig controls the SQLite run catalog.
type CatalogConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SimulationConfig struct {
	Binary  string        `yaml:"binary"`
	Weather string        `yaml:"weather"`
	WorkDir string        `yaml:"work_dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the baseline used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{Root: defaultDataRoot()},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.3,
			Timeout:     60 * time.Second,
			MaxRetries:  3,
			Backoff:     2 * time.Second,
		},
		Report: ReportConfig{
			Title:         "Wellbeing by Design",
			FailurePolicy: PolicyAbort,
			Formats:       []string{"docx"},
			Font:          "Calibri",
			FontSize:      11,
		},
		Catalog:    CatalogConfig{Enabled: true, Path: filepath.Join("data", "catalog.db"), MaxOpenConns: 4, BusyTimeout: 5 * time.Second},
		Server:     ServerConfig{Addr: ":8081"},
		Simulation: SimulationConfig{Binary: "energyplus", Timeout: 30 * time.Minute},
	}
}

func defaultDataRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join("SpinyLeaf_App", "Wellbeing_Fostered_by_Design")
	}
	return filepath.Join(home, "SpinyLeaf_App", "Wellbeing_Fostered_by_Design")
}

// Load builds the configuration. path may be empty, in which case
// WELLBEING_CONFIG_FILE is consulted.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("WELLBEING_CONFIG_FILE"))
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// Decoding onto the defaults keeps every key the file leaves out.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*dst = value
		}
	}
	setString("WELLBEING_DATA_ROOT", &cfg.Paths.Root)
	setString("WELLBEING_OUTPUT", &cfg.Paths.Output)
	setString("WELLBEING_LLM_PROVIDER", &cfg.LLM.Provider)
	setString("OPENAI_API_KEY", &cfg.LLM.APIKey)
	setString("OPENAI_CHAT_MODEL", &cfg.LLM.Model)
	setString("OPENAI_ENDPOINT", &cfg.LLM.BaseURL)
	setString("WELLBEING_DESCRIPTORS", &cfg.LLM.Descriptors)
	setString("WELLBEING_FAILURE_POLICY", &cfg.Report.FailurePolicy)
	setString("WELLBEING_CATALOG_PATH", &cfg.Catalog.Path)
	setString("WELLBEING_ADDR", &cfg.Server.Addr)
	setString("ENERGYPLUS_BIN", &cfg.Simulation.Binary)
	setString("WELLBEING_WEATHER_FILE", &cfg.Simulation.Weather)

	if value := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse OPENAI_HTTP_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("WELLBEING_LLM_TEMPERATURE")); value != "" {
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parse WELLBEING_LLM_TEMPERATURE: %w", err)
		}
		cfg.LLM.Temperature = temp
	}
	if value := strings.TrimSpace(os.Getenv("WELLBEING_LLM_RETRIES")); value != "" {
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse WELLBEING_LLM_RETRIES: %w", err)
		}
		if retries < 0 {
			retries = 0
		}
		cfg.LLM.MaxRetries = retries
	}
	if value := strings.TrimSpace(os.Getenv("WELLBEING_FORMATS")); value != "" {
		cfg.Report.Formats = splitList(value)
	}
	if value := strings.TrimSpace(os.Getenv("WELLBEING_CATALOG_ENABLED")); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parse WELLBEING_CATALOG_ENABLED: %w", err)
		}
		cfg.Catalog.Enabled = enabled
	}
	if value := strings.TrimSpace(os.Getenv("ENERGYPLUS_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse ENERGYPLUS_TIMEOUT: %w", err)
		}
		cfg.Simulation.Timeout = dur
	}
	return nil
}

func (c *Config) applyDefaults() {
	p := &c.Paths
	if strings.TrimSpace(p.Root) == "" {
		p.Root = defaultDataRoot()
	}
	derive := func(dst *string, parts ...string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = filepath.Join(append([]string{p.Root}, parts...)...)
		}
	}
	derive(&p.Wellbeing, "Wellbeing.csv")
	derive(&p.Comfort, "Comfort_Dimension", "Comfort.csv")
	derive(&p.Materials, "Comfort_Dimension", "Materials.csv")
	derive(&p.Delight, "Delight_Dimension", "Delight.csv")
	derive(&p.Social, "Social_Dimension", "Social.csv")
	derive(&p.Output, "Wellbeing_Report.docx")

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.LLM.Backoff <= 0 {
		c.LLM.Backoff = 2 * time.Second
	}
	c.Report.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Report.FailurePolicy))
	if c.Report.FailurePolicy == "" {
		c.Report.FailurePolicy = PolicyAbort
	}
	if len(c.Report.Formats) == 0 {
		c.Report.Formats = []string{"docx"}
	}
	if strings.TrimSpace(c.Report.Title) == "" {
		c.Report.Title = "Wellbeing by Design"
	}
	if strings.TrimSpace(c.Report.Font) == "" {
		c.Report.Font = "Calibri"
	}
	if c.Report.FontSize <= 0 {
		c.Report.FontSize = 11
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = filepath.Join("data", "catalog.db")
	}
	if c.Catalog.MaxOpenConns <= 0 {
		c.Catalog.MaxOpenConns = 4
	}
	if c.Catalog.BusyTimeout <= 0 {
		c.Catalog.BusyTimeout = 5 * time.Second
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8081"
	}
	if strings.TrimSpace(c.Simulation.Binary) == "" {
		c.Simulation.Binary = "energyplus"
	}
	if c.Simulation.Timeout <= 0 {
		c.Simulation.Timeout = 30 * time.Minute
	}
}

// Validate rejects settings that would only fail later in the pipeline.
func (c Config) Validate() error {
	var errs []error
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errs = append(errs, fmt.Errorf("llm temperature %.2f outside [0,1]", c.LLM.Temperature))
	}
	switch c.LLM.Provider {
	case "openai", "echo":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.Report.FailurePolicy {
	case PolicyAbort, PolicySkip:
	default:
		errs = append(errs, fmt.Errorf("unknown failure policy %q", c.Report.FailurePolicy))
	}
	for _, format := range c.Report.Formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "docx", "md", "markdown":
		default:
			errs = append(errs, fmt.Errorf("unknown report format %q", format))
		}
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm max_retries must not be negative"))
	}
	return errors.Join(errs...)
}

// ImageDir returns the directory holding a dimension's chart images, which
// sits next to the dimension's table.
func (p PathsConfig) ImageDir(dimension string) string {
	switch strings.ToLower(dimension) {
	case "comfort":
		return filepath.Dir(p.Comfort)
	case "delight":
		return filepath.Dir(p.Delight)
	case "social":
		return filepath.Dir(p.Social)
	default:
		return filepath.Dir(p.Wellbeing)
	}
}

// WantsFormat reports whether the named output format is enabled.
func (r ReportConfig) WantsFormat(name string) bool {
	name = strings.ToLower(name)
	for _, format := range r.Formats {
		f := strings.ToLower(strings.TrimSpace(format))
		if f == name || (name == "md" && f == "markdown") {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
