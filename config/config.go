package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names an optional YAML file layered under the environment.
const ConfigPathEnv = "EXAM_SOLVER_CONFIG"

var (
	once   sync.Once
	global *Config
	errGet error
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Minio     MinioConfig     `yaml:"minio"`
	S3        S3Config        `yaml:"s3"`
	GCS       GCSConfig       `yaml:"gcs"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Inference InferenceConfig `yaml:"inference"`
	Upload    UploadConfig    `yaml:"upload"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

// StorageConfig selects the object store backend: minio, s3, gcs or memory.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"publicBaseURL"`
}

type GCSConfig struct {
	CredentialsFile string `yaml:"credentialsFile"`
}

// DatabaseConfig with an empty DSN falls back to the in-memory repository.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// RedisConfig with an empty Addr disables progress snapshots and deferred purges.
type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	ProgressTTL time.Duration `yaml:"progressTTL"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"maxFileSize"`
	MaxPDFPages int   `yaml:"maxPDFPages"`

	// ImageMaxDimension caps the longer side of photographed pages.
	ImageMaxDimension int  `yaml:"imageMaxDimension"`
	EnhanceImages     bool `yaml:"enhanceImages"`

	// PDFRenderers bounds how many PDFs are rasterized at once.
	PDFRenderers int `yaml:"pdfRenderers"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 5 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout"},
		},
		Storage: StorageConfig{
			Backend: "memory",
			Bucket:  "papers",
		},
		Database: DatabaseConfig{
			MaxIdleConns:    5,
			MaxOpenConns:    20,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			ProgressTTL: 24 * time.Hour,
		},
		Inference: defaultInference(),
		Upload: UploadConfig{
			MaxFileSize:       20 << 20,
			MaxPDFPages:       50,
			ImageMaxDimension: 2048,
			EnhanceImages:     true,
			PDFRenderers:      2,
		},
		Worker: WorkerConfig{
			Concurrency: 5,
		},
	}
}

// Get loads the process configuration once.
func Get() (*Config, error) {
	once.Do(func() {
		loadDotEnv()
		global, errGet = Load(os.Getenv(ConfigPathEnv))
	})
	return global, errGet
}

// Load builds a Config from defaults, the optional YAML file at path and
// the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "minio", "s3", "gcs", "memory":
	default:
		return fmt.Errorf("unsupported storage backend: %q", c.Storage.Backend)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	switch c.Inference.Provider {
	case "vertex":
		if c.Inference.ProjectID == "" {
			return fmt.Errorf("inference project id is required for vertex")
		}
	case "ollama":
		if c.Inference.Endpoint == "" {
			return fmt.Errorf("inference endpoint is required for ollama")
		}
	default:
		return fmt.Errorf("unsupported inference provider: %q", c.Inference.Provider)
	}
	if c.Inference.PageDelay < 0 {
		return fmt.Errorf("inference page delay must not be negative")
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Server.Mode, "GIN_MODE")
	setList(&c.Server.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Encoding, "LOG_ENCODING")
	setList(&c.Log.OutputPaths, "LOG_OUTPUT_PATHS")

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	setString(&c.GCS.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	c.S3.applyEnv()

	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	for _, apply := range []func() error{
		func() error { return setDuration(&c.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT") },
		func() error { return setInt(&c.Redis.DB, "REDIS_DB") },
		func() error { return setInt64(&c.Upload.MaxFileSize, "UPLOAD_MAX_FILE_SIZE") },
		func() error { return setInt(&c.Upload.MaxPDFPages, "UPLOAD_MAX_PDF_PAGES") },
		func() error { return setInt(&c.Upload.ImageMaxDimension, "UPLOAD_IMAGE_MAX_DIMENSION") },
		func() error { return setBool(&c.Upload.EnhanceImages, "UPLOAD_ENHANCE_IMAGES") },
		func() error { return setInt(&c.Upload.PDFRenderers, "UPLOAD_PDF_RENDERERS") },
		func() error { return setInt(&c.Worker.Concurrency, "WORKER_CONCURRENCY") },
		c.Minio.applyEnv,
		c.Inference.applyEnv,
	} {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}

func loadDotEnv() {
	_, filename, _, _ := runtime.Caller(0)
	rootDir := filepath.Dir(filepath.Dir(filename))
	envPath := filepath.Join(rootDir, ".env")

	if err := godotenv.Load(envPath); err != nil {
		// a missing .env is normal in containers
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat32(dst *float32, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = float32(f)
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
