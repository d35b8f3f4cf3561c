package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultGameClientID is the client id shipped in UT4 game builds.
const DefaultGameClientID = "1252412dc7704a9690f6ea4611bc81ee"

type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL"` // required for postgres
	PepperFile     string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	// StoreTimeout bounds each connection attempt at startup, each grant
	// exchange and each API request.
	StoreTimeout         time.Duration `env:"AUTH_STORE_TIMEOUT" envDefault:"5s"`
	StoreConnectAttempts uint64        `env:"AUTH_STORE_CONNECT_ATTEMPTS" envDefault:"5"`

	AccessTTL            time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"2h"`
	RefreshTTL           time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"8h"`
	ExchangeCodeTTL      time.Duration `env:"AUTH_EXCHANGE_CODE_TTL" envDefault:"5m"`
	AuthorizationCodeTTL time.Duration `env:"AUTH_AUTHORIZATION_CODE_TTL" envDefault:"5m"`

	// TraceSampleRatio is the share of requests that record spans. Spans are
	// only used to correlate log lines; there is no exporter.
	TraceSampleRatio float64 `env:"AUTH_TRACE_SAMPLE_RATIO" envDefault:"1"`

	GameClient SeedClient `envPrefix:"AUTH_GAME_CLIENT_"`
	WebClient  SeedClient `envPrefix:"AUTH_WEB_CLIENT_"`
}

// SeedClient is a client the server creates on startup when missing. An
// empty ID disables the seed. An empty Secret makes the client public.
type SeedClient struct {
	ID            string `env:"ID"`
	Name          string `env:"NAME"`
	Secret        string `env:"SECRET"`
	SingleSession bool   `env:"SINGLE_SESSION"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		GameClient: SeedClient{ID: DefaultGameClientID, Name: "UT4 game"},
		WebClient:  SeedClient{Name: "UT4 web"},
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return fmt.Errorf("AUTH_DATABASE_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("AUTH_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	for name, ttl := range map[string]time.Duration{
		"AUTH_ACCESS_TTL":             c.AccessTTL,
		"AUTH_REFRESH_TTL":            c.RefreshTTL,
		"AUTH_EXCHANGE_CODE_TTL":      c.ExchangeCodeTTL,
		"AUTH_AUTHORIZATION_CODE_TTL": c.AuthorizationCodeTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.RefreshTTL < c.AccessTTL {
		return fmt.Errorf("AUTH_REFRESH_TTL must not be shorter than AUTH_ACCESS_TTL")
	}

	for _, seed := range []SeedClient{c.GameClient, c.WebClient} {
		if seed.ID == "" {
			continue
		}
		if _, err := idx.Parse(seed.ID); err != nil {
			return fmt.Errorf("seed client id %q: %w", seed.ID, err)
		}
	}
	return nil
}

// Lifetimes returns the configured TTLs.
func (c Config) Lifetimes() service.Lifetimes {
	return service.Lifetimes{
		AccessToken:       c.AccessTTL,
		RefreshToken:      c.RefreshTTL,
		ExchangeCode:      c.ExchangeCodeTTL,
		AuthorizationCode: c.AuthorizationCodeTTL,
	}
}

// SeedClients returns the enabled seed clients in bootstrap form.
func (c Config) SeedClients() []service.NewClient {
	var out []service.NewClient
	for _, seed := range []SeedClient{c.GameClient, c.WebClient} {
		if seed.ID == "" {
			continue
		}
		id, err := idx.Parse(seed.ID)
		if err != nil {
			continue // rejected by Validate
		}
		out = append(out, service.NewClient{
			ID:            id,
			Name:          seed.Name,
			Secret:        seed.Secret,
			SingleSession: seed.SingleSession,
		})
	}
	return out
}
