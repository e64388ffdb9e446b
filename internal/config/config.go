// Package config carga la configuración del servicio en capas:
// valores por defecto -> archivo YAML opcional -> variables de entorno.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar permite apuntar a un archivo de configuración explícito.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths se revisan en orden; se usa el primero que exista.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
}

// Fuentes de datos soportadas por el cargador del catálogo.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Mongo     MongoConfig     `koanf:"mongo"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	// CORSOrigins vacío deja CORS desactivado.
	CORSOrigins []string `koanf:"cors_origins"`
}

// Addr devuelve host:port para http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DataConfig struct {
	Source         string `koanf:"source" validate:"oneof=file mongo"`
	MoviesPath     string `koanf:"movies_path"`
	SimilarityPath string `koanf:"similarity_path"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

type TMDBConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	ImageBaseURL      string        `koanf:"image_base_url" validate:"required,url"`
	PlaceholderURL    string        `koanf:"placeholder_url" validate:"required,url"`
	Language          string        `koanf:"language"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxAttempts       int           `koanf:"max_attempts" validate:"min=1,max=10"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	BreakerEnabled    bool          `koanf:"breaker_enabled"`
}

type RecommendConfig struct {
	Count int `koanf:"count" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// -----------------------------------------------------------
// Valores por defecto
// -----------------------------------------------------------

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      3 * time.Minute, // 5 pósters x 3 intentos x 10s en el peor caso
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Data: DataConfig{
			Source:         SourceFile,
			MoviesPath:     "data/movies.csv",
			SimilarityPath: "data/similarity.csv",
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "cinematch",
			ConnectTimeout: 10 * time.Second,
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
			PlaceholderURL:    "https://via.placeholder.com/500x750.png?text=No+Poster+Available",
			Language:          "en-US",
			Timeout:           10 * time.Second,
			MaxAttempts:       3,
			RequestsPerSecond: 40,
		},
		Recommend: RecommendConfig{
			Count: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default devuelve la configuración por defecto ya validada (útil en tests y herramientas).
func Default() *Config {
	return defaultConfig()
}

// -----------------------------------------------------------
// Carga
// -----------------------------------------------------------

// Load aplica defaults, archivo YAML (si existe) y entorno, y valida el resultado.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("cargando defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("cargando archivo %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("cargando entorno: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decodificando configuración: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths son rutas que desde el entorno llegan como "a,b,c".
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		str, ok := k.Get(path).(string)
		if !ok || str == "" {
			continue
		}
		parts := strings.Split(str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("ajustando %s: %w", path, err)
		}
	}
	return nil
}

// envMappings traduce variables de entorno a rutas koanf.
// Variables fuera de la tabla se ignoran.
var envMappings = map[string]string{
	"host":                 "server.host",
	"port":                 "server.port",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",
	"rate_limit_requests":  "server.rate_limit_requests",
	"rate_limit_window":    "server.rate_limit_window",
	"rate_limit_disabled":  "server.rate_limit_disabled",
	"cors_origins":         "server.cors_origins",

	"data_source":     "data.source",
	"movies_path":     "data.movies_path",
	"similarity_path": "data.similarity_path",

	"mongo_uri":             "mongo.uri",
	"mongo_database":        "mongo.database",
	"mongo_connect_timeout": "mongo.connect_timeout",

	"tmdb_api_key":             "tmdb.api_key",
	"tmdb_base_url":            "tmdb.base_url",
	"tmdb_image_base_url":      "tmdb.image_base_url",
	"tmdb_placeholder_url":     "tmdb.placeholder_url",
	"tmdb_language":            "tmdb.language",
	"tmdb_timeout":             "tmdb.timeout",
	"tmdb_max_attempts":        "tmdb.max_attempts",
	"tmdb_requests_per_second": "tmdb.requests_per_second",
	"tmdb_breaker_enabled":     "tmdb.breaker_enabled",

	"recommend_count": "recommend.count",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// -----------------------------------------------------------
// Validación
// -----------------------------------------------------------

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Data.Source {
	case SourceFile:
		if strings.TrimSpace(c.Data.MoviesPath) == "" || strings.TrimSpace(c.Data.SimilarityPath) == "" {
			return fmt.Errorf("data.source=file requiere MOVIES_PATH y SIMILARITY_PATH")
		}
	case SourceMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" || strings.TrimSpace(c.Mongo.Database) == "" {
			return fmt.Errorf("data.source=mongo requiere MONGO_URI y MONGO_DATABASE")
		}
	}

	if !c.Server.RateLimitDisabled && c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window debe ser > 0")
	}
	return nil
}
