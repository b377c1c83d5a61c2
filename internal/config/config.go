package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"simple-shop/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	AppPort                string
	AppName                string
	MongoURI               string
	MongoDBName            string
	JWTSecret              string
	TokenTTL               time.Duration
	AuthRequired           bool
	AllowedOrigins         []string
	PublicBaseURL          string
	TrustProxyHeaders      bool
	UploadDir              string
	MaxUploadBytes         int64
	ImageStorage           string
	S3Bucket               string
	S3Region               string
	S3Prefix               string
	KafkaBrokers           []string
	KafkaTopic             string
	GrpcPort               string
	TraceStdout            bool
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
}

// SafeConfig is the loggable subset of Config (no secrets, no credentials in URIs).
type SafeConfig struct {
	AppPort                string   `json:"app_port"`
	AppName                string   `json:"app_name"`
	MongoDBName            string   `json:"mongo_db_name"`
	TokenTTL               string   `json:"token_ttl"`
	AuthRequired           bool     `json:"auth_required"`
	AllowedOrigins         []string `json:"allowed_origins"`
	PublicBaseURL          string   `json:"public_base_url"`
	TrustProxyHeaders      bool     `json:"trust_proxy_headers"`
	UploadDir              string   `json:"upload_dir"`
	MaxUploadBytes         int64    `json:"max_upload_bytes"`
	ImageStorage           string   `json:"image_storage"`
	S3Bucket               string   `json:"s3_bucket"`
	KafkaTopic             string   `json:"kafka_topic"`
	KafkaBrokers           []string `json:"kafka_brokers"`
	GrpcPort               string   `json:"grpc_port"`
	RemoteLogHttpURI       string   `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string   `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string   `json:"remote_profiling_http_uri"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "4000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	ttl := "none"
	if c.TokenTTL > 0 {
		ttl = c.TokenTTL.String()
	}
	return SafeConfig{
		AppPort:                c.AppPort,
		AppName:                c.AppName,
		MongoDBName:            c.MongoDBName,
		TokenTTL:               ttl,
		AuthRequired:           c.AuthRequired,
		AllowedOrigins:         c.AllowedOrigins,
		PublicBaseURL:          c.PublicBaseURL,
		TrustProxyHeaders:      c.TrustProxyHeaders,
		UploadDir:              c.UploadDir,
		MaxUploadBytes:         c.MaxUploadBytes,
		ImageStorage:           c.ImageStorage,
		S3Bucket:               c.S3Bucket,
		KafkaTopic:             c.KafkaTopic,
		KafkaBrokers:           c.KafkaBrokers,
		GrpcPort:               c.GrpcPort,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

var (
	configInstance *Config
	configOnce     sync.Once
)

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var errs []error

	ttl, err := getDuration("TOKEN_TTL", 3*time.Hour)
	if err != nil {
		errs = append(errs, err)
	}
	maxUpload, err := getInt64("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		errs = append(errs, err)
	}
	authRequired, err := getBool("AUTH_REQUIRED", true)
	if err != nil {
		errs = append(errs, err)
	}
	traceStdout, err := getBool("TRACE_STDOUT", false)
	if err != nil {
		errs = append(errs, err)
	}
	trustProxy, err := getBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		AppPort:                firstNonEmpty(os.Getenv("APP_PORT"), os.Getenv("PORT"), "4000"),
		AppName:                getEnv("APP_NAME", "simple-shop"),
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDBName:            os.Getenv("MONGO_DB_NAME"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               ttl,
		AuthRequired:           authRequired,
		AllowedOrigins:         CSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:          strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		TrustProxyHeaders:      trustProxy,
		UploadDir:              getEnv("UPLOAD_DIR", "./product_images"),
		MaxUploadBytes:         maxUpload,
		ImageStorage:           strings.ToLower(getEnv("IMAGE_STORAGE", StorageLocal)),
		S3Bucket:               os.Getenv("S3_BUCKET"),
		S3Region:               getEnv("S3_REGION", "us-east-1"),
		S3Prefix:               getEnv("S3_PREFIX", "product_images/"),
		KafkaBrokers:           CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:             getEnv("KAFKA_TOPIC", "shop-events"),
		GrpcPort:               os.Getenv("GRPC_PORT"),
		TraceStdout:            traceStdout,
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.MongoDBName == "" {
		missing = append(missing, "MONGO_DB_NAME")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.ImageStorage == StorageS3 && cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}

	if port, err := strconv.Atoi(cfg.AppPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid APP_PORT %q", cfg.AppPort))
	}
	if cfg.ImageStorage != StorageLocal && cfg.ImageStorage != StorageS3 {
		errs = append(errs, fmt.Errorf("invalid IMAGE_STORAGE %q: want %q or %q", cfg.ImageStorage, StorageLocal, StorageS3))
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("invalid MAX_UPLOAD_BYTES %d", cfg.MaxUploadBytes))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Instance loads the configuration once per process. A .env file in the
// working directory is honoured but never overrides the real environment.
func Instance() *Config {
	configOnce.Do(func() {
		log := logger.Instance()

		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}

		cfg, err := Load()
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)

		configInstance = cfg
	})

	return configInstance
}
