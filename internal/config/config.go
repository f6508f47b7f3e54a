package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string `yaml:"address"`
	Port int    `yaml:"port"`
	// Requests per second per client; 0 disables rate limiting.
	RateLimit      int  `yaml:"rate_limit"`
	GzipLevel      int  `yaml:"gzip_level"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	LogLatency     bool `yaml:"log_latency"`

	BehindLoadBalancer bool `yaml:"behind_load_balancer"`

	// TLS: cert_dir holds fullchain.pem/privkey.pem, or the ACME cache when
	// acme_enabled is set.
	CertDir     string   `yaml:"cert_dir"`
	AcmeEnabled bool     `yaml:"acme_enabled"`
	Hostnames   []string `yaml:"hostnames"`
}

type DataConfig struct {
	CasesFile   string `yaml:"cases_file"`
	SummaryFile string `yaml:"summary_file"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// json, console, or empty to pick by terminal.
	Format string `yaml:"format"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Log    LogConfig    `yaml:"log"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "localhost",
			Port:           8050,
			GzipLevel:      5,
			TimeoutSeconds: 10,
		},
		Data: DataConfig{
			CasesFile:   "covid_19_clean_complete.csv",
			SummaryFile: "country_wise_latest.csv",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("parse config %s: %w", path, err)
	}
	return conf, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Data.CasesFile == "" {
		errs = append(errs, errors.New("data.cases_file is required"))
	}
	if c.Data.SummaryFile == "" {
		errs = append(errs, errors.New("data.summary_file is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.GzipLevel < -1 || c.Server.GzipLevel > 9 {
		errs = append(errs, fmt.Errorf("server.gzip_level %d out of range", c.Server.GzipLevel))
	}
	if c.Server.AcmeEnabled && (c.Server.CertDir == "" || len(c.Server.Hostnames) == 0) {
		errs = append(errs, errors.New("server.acme_enabled needs cert_dir and hostnames"))
	}
	return errors.Join(errs...)
}
