// Package config carga la configuración del servicio desde YAML + overrides por ENV.
//
// Orden de precedencia: defaults < YAML < variables de entorno.
// El .env (si existe) lo carga cada cmd con godotenv antes de llamar Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration acepta "1h30m" en YAML; yaml.v3 no decodifica time.Duration solo.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std devuelve el valor como time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		RateLimit          struct {
			Enabled bool     `yaml:"enabled"`
			Max     int      `yaml:"max"`
			Window  Duration `yaml:"window"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	// Clerk es el emisor externo de tokens. Nosotros solo verificamos:
	// bajamos su JWKS y comparamos el issuer textual, sin wildcards.
	Clerk struct {
		JWKSURL      string   `yaml:"jwks_url"`
		Issuer       string   `yaml:"issuer"`
		JWKSTTL      Duration `yaml:"jwks_ttl"`
		FetchTimeout Duration `yaml:"fetch_timeout"`
	} `yaml:"clerk"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides de ENV.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.RateLimit.Max == 0 {
		c.Server.RateLimit.Max = 120
	}
	if c.Server.RateLimit.Window == 0 {
		c.Server.RateLimit.Window = Duration(time.Minute)
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Clerk.JWKSTTL == 0 {
		c.Clerk.JWKSTTL = Duration(time.Hour)
	}
	if c.Clerk.FetchTimeout == 0 {
		c.Clerk.FetchTimeout = Duration(5 * time.Second)
	}

	// validate string durations
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, fmt.Errorf("config: storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	if c.Cache.Memory.DefaultTTL != "" {
		if _, err := time.ParseDuration(c.Cache.Memory.DefaultTTL); err != nil {
			return nil, fmt.Errorf("config: cache.memory.default_ttl: %w", err)
		}
	}

	return c, nil
}

// Validate chequea los valores sin los cuales el servicio no puede autenticar nada.
func (c *Config) Validate() error {
	if c.Clerk.JWKSURL == "" {
		return fmt.Errorf("config: clerk.jwks_url is required")
	}
	if c.Clerk.Issuer == "" {
		return fmt.Errorf("config: clerk.issuer is required")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn is required")
	}
	return nil
}

// applyEnvOverrides pisa valores del YAML con ENV (si están presentes).
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok && len(v) > 0 {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvBool("RATE_LIMIT_ENABLED"); ok {
		c.Server.RateLimit.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT_MAX"); ok {
		c.Server.RateLimit.Max = v
	}
	if d, ok := getEnvDur("RATE_LIMIT_WINDOW"); ok {
		c.Server.RateLimit.Window = Duration(d)
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("STORAGE_PG_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("CACHE_MEMORY_DEFAULT_TTL"); ok {
		c.Cache.Memory.DefaultTTL = v
	}

	// CLERK
	if v, ok := getEnvStr("CLERK_JWKS_URL"); ok {
		c.Clerk.JWKSURL = v
	}
	if v, ok := getEnvStr("CLERK_ISSUER"); ok {
		c.Clerk.Issuer = v
	}
	if d, ok := getEnvDur("CLERK_JWKS_TTL"); ok {
		c.Clerk.JWKSTTL = Duration(d)
	}
	if d, ok := getEnvDur("CLERK_FETCH_TIMEOUT"); ok {
		c.Clerk.FetchTimeout = Duration(d)
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// ───── helpers ENV ─────

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
