package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	PocketBase PocketBaseConfig `mapstructure:"pocketbase"`
	Server     ServerConfig     `mapstructure:"server"`
	Thumbnail  ThumbnailConfig  `mapstructure:"thumbnail"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Export     ExportConfig     `mapstructure:"export"`
}

type PocketBaseConfig struct {
	URL               string        `mapstructure:"url" validate:"required,url"`
	PublicURL         string        `mapstructure:"public_url" validate:"omitempty,url"`
	SuperuserEmail    string        `mapstructure:"superuser_email" validate:"required,email"`
	SuperuserPassword string        `mapstructure:"superuser_password" validate:"required"`
	FullTextSearch    bool          `mapstructure:"full_text_search"`
	Timeout           time.Duration `mapstructure:"timeout"`
	HealthRetries     uint          `mapstructure:"health_retries" validate:"min=1"`
	HealthDelay       time.Duration `mapstructure:"health_delay"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ThumbnailConfig struct {
	Size        string        `mapstructure:"size" validate:"thumbsize"`
	MinSize     int64         `mapstructure:"min_size" validate:"min=0"`
	FrameOffset time.Duration `mapstructure:"frame_offset"`
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ExportConfig struct {
	Directory string `mapstructure:"directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/curator")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("pocketbase.url", "http://localhost:8090")
	v.SetDefault("pocketbase.superuser_email", "admin@pocketbase.com")
	v.SetDefault("pocketbase.superuser_password", "amiodarone")
	v.SetDefault("pocketbase.full_text_search", true)
	v.SetDefault("pocketbase.timeout", 30*time.Second)
	v.SetDefault("pocketbase.health_retries", 30)
	v.SetDefault("pocketbase.health_delay", time.Second)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("thumbnail.size", "500x0")
	v.SetDefault("thumbnail.min_size", 10000)
	v.SetDefault("thumbnail.frame_offset", time.Second)
	v.SetDefault("thumbnail.ffmpeg_path", "ffmpeg")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "curator")
	v.SetDefault("database.username", "user")
	v.SetDefault("export.directory", filepath.Join("outputs", "export"))

	// PocketBase location and credentials usually come from the docker environment
	bindings := map[string]string{
		"pocketbase.url":                "POCKETBASE_URL",
		"pocketbase.public_url":         "PUBLIC_POCKETBASE_URL",
		"pocketbase.superuser_email":    "POCKETBASE_SUPERUSER_EMAIL",
		"pocketbase.superuser_password": "POCKETBASE_SUPERUSER_PASSWORD",
		"database.password":             "DB_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if cfg.PocketBase.PublicURL == "" {
		cfg.PocketBase.PublicURL = cfg.PocketBase.URL
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
