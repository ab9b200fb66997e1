package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the ingest pipeline configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Unsplash  UnsplashConfig  `yaml:"unsplash"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Alert     AlertConfig     `yaml:"alert"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds search engine connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"` // logical database, SELECT index
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds index naming and vector field settings.
type IndexConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	VectorDim       int    `yaml:"vector_dim"`
	Distance        string `yaml:"distance"`  // COSINE, L2, IP
	Algorithm       string `yaml:"algorithm"` // HNSW, FLAT
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// IngestConfig holds pipeline sizing.
type IngestConfig struct {
	BatchSize     int `yaml:"batch_size"`
	ChunkSize     int `yaml:"chunk_size"`
	DecodeWorkers int `yaml:"decode_workers"`
}

// UnsplashConfig locates the photo dump.
type UnsplashConfig struct {
	PhotosDir    string `yaml:"photos_dir"`
	MetadataPath string `yaml:"metadata_path"`
	Glob         string `yaml:"glob"`
}

// WarehouseConfig holds BigQuery settings for the question dataset.
type WarehouseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	QueryFile       string `yaml:"query_file"`
	Location        string `yaml:"location"`
	PageSize        int64  `yaml:"page_size"`
	TimeoutSec      int    `yaml:"timeout_sec"`
}

// ExtractorConfig holds the feature extraction endpoint settings.
type ExtractorConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unthrottled
	Dimensions        int     `yaml:"dimensions"`          // 0 = model default
}

// AlertConfig holds alert channel settings.
type AlertConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"` // empty = log only
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Port int `yaml:"port"` // 0 = disabled
}

// Load reads config/<env>.yaml for env (local, dev, docker, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv exports variables from .env files into the process environment
// so ${VAR} references resolve. Missing files are skipped; set variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnv returns $ENV, or "local" when unset.
func GetEnv() string {
	return cmp.Or(os.Getenv("ENV"), "local")
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "imgsearch:"
	}
	if c.Index.VectorDim <= 0 {
		c.Index.VectorDim = 512
	}
	if c.Index.Distance == "" {
		c.Index.Distance = "COSINE"
	}
	if c.Index.Algorithm == "" {
		c.Index.Algorithm = "HNSW"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 64
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 128
	}
	if c.Ingest.DecodeWorkers <= 0 {
		c.Ingest.DecodeWorkers = 1
	}
	if c.Unsplash.Glob == "" {
		c.Unsplash.Glob = "*.jpg"
	}
	if c.Warehouse.PageSize <= 0 {
		c.Warehouse.PageSize = 10000
	}
	if c.Warehouse.TimeoutSec <= 0 {
		c.Warehouse.TimeoutSec = 600
	}
	if c.Extractor.TimeoutSec <= 0 {
		c.Extractor.TimeoutSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Database.DB < 0 {
		return fmt.Errorf("database.db must not be negative, got %d", c.Database.DB)
	}
	switch strings.ToUpper(c.Index.Distance) {
	case "COSINE", "L2", "IP":
	default:
		return fmt.Errorf("index.distance must be COSINE, L2 or IP, got %q", c.Index.Distance)
	}
	switch strings.ToUpper(c.Index.Algorithm) {
	case "HNSW", "FLAT":
	default:
		return fmt.Errorf("index.algorithm must be HNSW or FLAT, got %q", c.Index.Algorithm)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	if c.Extractor.RequestsPerSecond < 0 {
		return fmt.Errorf("extractor.requests_per_second must not be negative")
	}
	if c.Extractor.Dimensions < 0 {
		return fmt.Errorf("extractor.dimensions must not be negative, got %d", c.Extractor.Dimensions)
	}
	return nil
}

// configDirs lists where <env>.yaml is looked up, in order: $IMGSEARCH_CONFIG_DIR,
// ./config, then the config directory of the source tree for `go test` and `go run`.
func configDirs() []string {
	dirs := make([]string, 0, 3)
	if d := os.Getenv("IMGSEARCH_CONFIG_DIR"); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, "config")
	if _, file, _, ok := runtime.Caller(0); ok {
		dirs = append(dirs, filepath.Join(file, "..", "..", "..", "config"))
	}
	return dirs
}

// findConfigPath returns the first existing <env>.yaml, or ./config/<env>.yaml
// so the read error names a sensible path.
func findConfigPath(env string) string {
	name := env + ".yaml"
	for _, dir := range configDirs() {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return filepath.Join("config", name)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default}. Unset or empty
// variables without a default become "".
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[3]
	})
}
