package common

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileEnv names the environment variable holding an optional TOML config path.
const ConfigFileEnv = "DOCEXTRACT_CONFIG"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig `toml:"server"`
	OCR      OCRConfig    `toml:"ocr"`
	LLM      LLMConfig    `toml:"llm"`
	Render   RenderConfig `toml:"render"`
	TempDir  string       `toml:"temp_dir" validate:"required"`
	LogLevel string       `toml:"log_level" validate:"oneof=debug info warn error"`
}

// ServerConfig holds HTTP front end configuration
type ServerConfig struct {
	Addr            string   `toml:"addr" validate:"required"`
	MaxUploadMB     int      `toml:"max_upload_mb" validate:"min=1"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Backend     string         `toml:"backend" validate:"oneof=local cloud embedded"`
	Tesseract   string         `toml:"tesseract" validate:"required"`
	Pdftoppm    string         `toml:"pdftoppm"`
	TessdataDir string         `toml:"tessdata_dir"`
	Languages   []string       `toml:"languages" validate:"min=1,dive,required"`
	DPI         int            `toml:"dpi" validate:"min=72,max=1200"`
	Rasterizer  string         `toml:"rasterizer" validate:"oneof=pdftoppm embedded"`
	MaxPages    int            `toml:"max_pages" validate:"min=0"`
	PSM         int            `toml:"psm" validate:"min=0,max=13"`
	Cloud       CloudOCRConfig `toml:"cloud"`
}

// CloudOCRConfig holds the remote Read API endpoint and its polling budget
type CloudOCRConfig struct {
	Endpoint        string   `toml:"endpoint" validate:"omitempty,url"`
	Key             string   `toml:"key"`
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
	MaxAttempts     int      `toml:"max_attempts" validate:"min=1"`
	Timeout         Duration `toml:"timeout"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string   `toml:"provider" validate:"oneof=openai anthropic gemini"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url" validate:"omitempty,url"`
	Temperature float32  `toml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int      `toml:"max_tokens" validate:"min=1"`
	Timeout     Duration `toml:"timeout"`
}

// RenderConfig holds report rendering configuration
type RenderConfig struct {
	Title         string `toml:"title"`
	Layout        string `toml:"layout" validate:"oneof=table lines"`
	UnicodePolicy string `toml:"unicode_policy" validate:"oneof=replace ignore"`
}

// Duration is a time.Duration that decodes from TOML strings like "45s".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

var defaultModels = map[string]string{
	"openai":    "gpt-4",
	"anthropic": "claude-sonnet-4-5",
	"gemini":    "gemini-2.5-flash",
}

var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadMB:     20,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		OCR: OCRConfig{
			Backend:    "local",
			Tesseract:  "tesseract",
			Pdftoppm:   "pdftoppm",
			Languages:  []string{"eng"},
			DPI:        300,
			Rasterizer: "pdftoppm",
			Cloud: CloudOCRConfig{
				InitialInterval: Duration(500 * time.Millisecond),
				MaxInterval:     Duration(8 * time.Second),
				MaxAttempts:     20,
				Timeout:         Duration(60 * time.Second),
			},
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0,
			MaxTokens:   2048,
			Timeout:     Duration(60 * time.Second),
		},
		Render: RenderConfig{
			Title:         "Extracted Document Report",
			Layout:        "table",
			UnicodePolicy: "replace",
		},
		TempDir:  filepath.Join(os.TempDir(), "docextract"),
		LogLevel: "info",
	}
}

// LoadConfig loads configuration: defaults, then the TOML file named by DOCEXTRACT_CONFIG, then environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(os.Getenv(ConfigFileEnv))
}

// LoadConfigFile is LoadConfig with an explicit file path; an empty path skips the file layer.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewConfigurationError("read config file "+path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, NewConfigurationError("parse config file "+path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(c *Config) {
	c.Server.Addr = getEnv("LISTEN_ADDR", c.Server.Addr)
	c.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.ShutdownTimeout = Duration(getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout.Std()))

	c.OCR.Backend = strings.ToLower(getEnv("OCR_BACKEND", c.OCR.Backend))
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Pdftoppm = getEnv("PDFTOPPM_BIN", c.OCR.Pdftoppm)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.Languages = getEnvAsList("OCR_LANGUAGES", c.OCR.Languages)
	c.OCR.DPI = getEnvAsInt("OCR_DPI", c.OCR.DPI)
	c.OCR.Rasterizer = strings.ToLower(getEnv("OCR_RASTERIZER", c.OCR.Rasterizer))
	c.OCR.MaxPages = getEnvAsInt("OCR_MAX_PAGES", c.OCR.MaxPages)
	c.OCR.PSM = getEnvAsInt("OCR_PSM", c.OCR.PSM)
	c.OCR.Cloud.Endpoint = getEnv("AZURE_VISION_ENDPOINT", c.OCR.Cloud.Endpoint)
	c.OCR.Cloud.Key = getEnv("AZURE_VISION_KEY", c.OCR.Cloud.Key)
	c.OCR.Cloud.InitialInterval = Duration(getEnvAsDuration("OCR_POLL_INITIAL", c.OCR.Cloud.InitialInterval.Std()))
	c.OCR.Cloud.MaxInterval = Duration(getEnvAsDuration("OCR_POLL_MAX", c.OCR.Cloud.MaxInterval.Std()))
	c.OCR.Cloud.MaxAttempts = getEnvAsInt("OCR_POLL_ATTEMPTS", c.OCR.Cloud.MaxAttempts)
	c.OCR.Cloud.Timeout = Duration(getEnvAsDuration("OCR_POLL_TIMEOUT", c.OCR.Cloud.Timeout.Std()))

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[c.LLM.Provider]; ok {
			c.LLM.APIKey = os.Getenv(name)
		}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = Duration(getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout.Std()))

	c.Render.Title = getEnv("REPORT_TITLE", c.Render.Title)
	c.Render.Layout = strings.ToLower(getEnv("REPORT_LAYOUT", c.Render.Layout))
	c.Render.UnicodePolicy = strings.ToLower(getEnv("REPORT_UNICODE_POLICY", c.Render.UnicodePolicy))

	c.TempDir = getEnv("TEMP_DIR", c.TempDir)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits on commas or '+', so both "eng,deu" and "eng+deu" work.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '+' || r == ' ' })
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and required credentials. Every failure is a CONFIG_ERROR.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return NewConfigurationError(strings.Join(msgs, "; "), ErrValidation)
		}
		return NewConfigurationError("invalid configuration", err)
	}
	if c.LLM.APIKey == "" {
		return NewConfigurationError(fmt.Sprintf("LLM_API_KEY (or %s) is required for provider %q", providerKeyEnv[c.LLM.Provider], c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewConfigurationError("LLM_MODEL is required", ErrInvalidInput)
	}
	if c.OCR.Backend == "cloud" {
		if c.OCR.Cloud.Endpoint == "" {
			return NewConfigurationError("AZURE_VISION_ENDPOINT is required when OCR_BACKEND=cloud", ErrInvalidInput)
		}
		if c.OCR.Cloud.Key == "" {
			return NewConfigurationError("AZURE_VISION_KEY is required when OCR_BACKEND=cloud", ErrInvalidInput)
		}
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
