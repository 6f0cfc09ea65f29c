package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upload   UploadConfig   `yaml:"upload"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Response ResponseConfig `yaml:"response"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

type UploadConfig struct {
	TempDir           string `yaml:"temp_dir"`
	MaxFileSize       int64  `yaml:"max_file_size"` // bytes, video uploads
	MaxJSONSize       int64  `yaml:"max_json_size"` // bytes, base64 image bodies
	MaxImageDimension int    `yaml:"max_image_dimension"`
}

type AnalyzerConfig struct {
	Interpreter    string        `yaml:"interpreter"`
	Script         string        `yaml:"script"`
	DefaultMode    string        `yaml:"default_mode"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxOutputBytes int           `yaml:"max_output_bytes"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
}

type CleanupConfig struct {
	ImageGrace     time.Duration `yaml:"image_grace"`
	SweepSchedule  string        `yaml:"sweep_schedule"`
	SweepMaxAge    time.Duration `yaml:"sweep_max_age"`
	Workers        int           `yaml:"workers"`
	WorkerInterval time.Duration `yaml:"worker_interval"`
}

type ResponseConfig struct {
	RawLimit    int `yaml:"raw_limit"`
	DetailLimit int `yaml:"detail_limit"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "5000",
			AllowedOrigins: "*",
		},
		Upload: UploadConfig{
			TempDir:     "uploads",
			MaxFileSize: 100 * 1024 * 1024, // 100MB
			MaxJSONSize: 50 * 1024 * 1024,  // 50MB
		},
		Analyzer: AnalyzerConfig{
			Interpreter:    "python",
			Script:         "analyze_pose.py",
			DefaultMode:    "desk",
			Timeout:        5 * time.Minute,
			MaxOutputBytes: 8 * 1024 * 1024,
			MaxConcurrent:  4,
		},
		Cleanup: CleanupConfig{
			ImageGrace:     5 * time.Minute,
			SweepSchedule:  "0 */5 * * * *",
			SweepMaxAge:    time.Hour,
			Workers:        2,
			WorkerInterval: 10 * time.Second,
		},
		Response: ResponseConfig{
			RawLimit:    500,
			DetailLimit: 2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	config := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file okunamadı: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("config file parse edilemedi: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", getEnv("PORT", c.Server.Port))
	c.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Upload.TempDir = getEnv("UPLOAD_TEMP_DIR", c.Upload.TempDir)
	c.Upload.MaxFileSize = getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", c.Upload.MaxFileSize)
	c.Upload.MaxJSONSize = getEnvAsInt64("UPLOAD_MAX_JSON_SIZE", c.Upload.MaxJSONSize)
	c.Upload.MaxImageDimension = getEnvAsInt("UPLOAD_MAX_IMAGE_DIMENSION", c.Upload.MaxImageDimension)

	c.Analyzer.Interpreter = getEnvAllowEmpty("ANALYZER_INTERPRETER", c.Analyzer.Interpreter)
	c.Analyzer.Script = getEnv("ANALYZER_SCRIPT", c.Analyzer.Script)
	c.Analyzer.DefaultMode = getEnv("ANALYZER_DEFAULT_MODE", c.Analyzer.DefaultMode)
	c.Analyzer.Timeout = getEnvAsDuration("ANALYZER_TIMEOUT", c.Analyzer.Timeout)
	c.Analyzer.MaxOutputBytes = getEnvAsInt("ANALYZER_MAX_OUTPUT_BYTES", c.Analyzer.MaxOutputBytes)
	c.Analyzer.MaxConcurrent = getEnvAsInt("ANALYZER_MAX_CONCURRENT", c.Analyzer.MaxConcurrent)

	c.Cleanup.ImageGrace = getEnvAsDuration("CLEANUP_IMAGE_GRACE", c.Cleanup.ImageGrace)
	c.Cleanup.SweepSchedule = getEnv("CLEANUP_SWEEP_SCHEDULE", c.Cleanup.SweepSchedule)
	c.Cleanup.SweepMaxAge = getEnvAsDuration("CLEANUP_SWEEP_MAX_AGE", c.Cleanup.SweepMaxAge)
	c.Cleanup.Workers = getEnvAsInt("CLEANUP_WORKERS", c.Cleanup.Workers)
	c.Cleanup.WorkerInterval = getEnvAsDuration("CLEANUP_WORKER_INTERVAL", c.Cleanup.WorkerInterval)

	c.Response.RawLimit = getEnvAsInt("RESPONSE_RAW_LIMIT", c.Response.RawLimit)
	c.Response.DetailLimit = getEnvAsInt("RESPONSE_DETAIL_LIMIT", c.Response.DetailLimit)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.AutoMigrate = getEnvAsBool("RUN_AUTO_MIGRATION", c.Database.AutoMigrate)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return fmt.Errorf("server port is empty")
	case c.Upload.TempDir == "":
		return fmt.Errorf("upload temp dir is empty")
	case c.Upload.MaxFileSize <= 0:
		return fmt.Errorf("upload max file size must be positive")
	case c.Analyzer.Script == "":
		return fmt.Errorf("analyzer script is empty")
	case c.Analyzer.DefaultMode == "":
		return fmt.Errorf("analyzer default mode is empty")
	case c.Analyzer.Timeout < 0 || c.Cleanup.ImageGrace < 0:
		return fmt.Errorf("durations must not be negative")
	case c.Cleanup.Workers <= 0:
		return fmt.Errorf("cleanup workers must be positive")
	case c.Cleanup.WorkerInterval <= 0:
		return fmt.Errorf("cleanup worker interval must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// BodyLimit is the largest request body the server accepts. Image routes
// apply the tighter MaxJSONSize themselves.
func (c *Config) BodyLimit() int {
	limit := c.Upload.MaxFileSize
	if c.Upload.MaxJSONSize > limit {
		limit = c.Upload.MaxJSONSize
	}
	// multipart framing around the file part
	return int(limit + 1024*1024)
}

// EnsureDirs creates the temp-files area and makes its path absolute.
func EnsureDirs(c *Config) error {
	dir, err := filepath.Abs(c.Upload.TempDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("temp dir oluşturulamadı: %w", err)
	}
	c.Upload.TempDir = dir
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty lets an explicitly empty variable override the default,
// e.g. ANALYZER_INTERPRETER= to execute the script directly.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}
