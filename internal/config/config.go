package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB" envDefault:"loans"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"loans"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"loans"`

	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	IdempEnabled bool `env:"IDEMPOTENCY_ENABLED" envDefault:"true"`
	IdempTTLSecs int  `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	PatronsURL          string        `env:"PATRONS_URL" envDefault:"http://patrons-service:8080"`
	CatalogURL          string        `env:"CATALOG_URL" envDefault:"http://catalog-service:8080"`
	FinesURL            string        `env:"FINES_URL" envDefault:"http://fines-service:8080"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"5s"`
	PatronCacheTTL      time.Duration `env:"PATRON_CACHE_TTL" envDefault:"0s"`

	// CompensatePartial reverts books a failed create/update already borrowed.
	CompensatePartial bool `env:"LOANS_COMPENSATE_PARTIAL" envDefault:"false"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load reads the environment into a Config. Each dotenv file that exists is
// loaded first; variables already set in the process win over the file.
func Load(dotenv ...string) (*Config, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	for name, raw := range map[string]string{"PATRONS_URL": c.PatronsURL, "CATALOG_URL": c.CatalogURL, "FINES_URL": c.FinesURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	if c.CollaboratorTimeout <= 0 {
		return errors.New("COLLABORATOR_TIMEOUT must be positive")
	}
	if c.IdempEnabled && c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime is needed for DATE/DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
