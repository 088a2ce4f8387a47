package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/turbolytics/arquivo/internal/period"
)

type Logger struct {
	Level string `yaml:"level"`
}

type API struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	DateMode string        `yaml:"date_mode"`
	PageSize int           `yaml:"page_size"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Session struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type        string      `yaml:"type"`
	LocalConfig LocalConfig `yaml:"local"`
	S3Config    S3Config    `yaml:"s3"`
}

type Export struct {
	Format     string     `yaml:"format"`
	Repository Repository `yaml:"repository"`
}

type Arquivo struct {
	Logger  Logger  `yaml:"logger"`
	API     API     `yaml:"api"`
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Export  Export  `yaml:"export"`
}

func Default() *Arquivo {
	sessionPath := filepath.Join(".", ".arquivo", "session.json")
	if home, err := os.UserHomeDir(); err == nil {
		sessionPath = filepath.Join(home, ".arquivo", "session.json")
	}

	return &Arquivo{
		Logger: Logger{Level: "info"},
		API: API{
			BaseURL:  "http://localhost:8080/api",
			Timeout:  30 * time.Second,
			DateMode: string(period.ModeISO),
			PageSize: 20,
		},
		Server: Server{Addr: ":8081"},
		Session: Session{
			Path: sessionPath,
			TTL:  8 * time.Hour,
		},
		Export: Export{
			Format: "json",
			Repository: Repository{
				Type:        "local",
				LocalConfig: LocalConfig{Path: "./exports"},
			},
		},
	}
}

// NewFromFile reads a YAML config on top of the defaults. An empty path
// returns the defaults.
func NewFromFile(fpath string) (*Arquivo, error) {
	c := Default()
	if fpath == "" {
		return c, nil
	}

	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fpath, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", fpath, err)
	}
	return c, nil
}

func (c *Arquivo) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := period.ParseMode(c.API.DateMode); err != nil {
		return fmt.Errorf("api.date_mode: %w", err)
	}
	if c.API.PageSize < 0 {
		return fmt.Errorf("api.page_size must not be negative")
	}
	switch c.Export.Repository.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown repository type: %s", c.Export.Repository.Type)
	}
	if c.Export.Repository.Type == "s3" && c.Export.Repository.S3Config.Bucket == "" {
		return fmt.Errorf("export.repository.s3.bucket is required")
	}
	return nil
}
