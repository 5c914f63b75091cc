package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vasapolrittideah/secrets/shared/validate"
)

type Config struct {
	Log      LogConfig      `envPrefix:"LOG_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Store    StoreConfig    `envPrefix:"STORE_"`
	Mongo    MongoConfig    `envPrefix:"MONGO_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Google   OAuthClient    `envPrefix:"GOOGLE_"`
	Facebook OAuthClient    `envPrefix:"FACEBOOK_"`
	OAuth    OAuthConfig    `envPrefix:"OAUTH_"`
	Password PasswordConfig `envPrefix:"PASSWORD_"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `env:"PRETTY"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"             envDefault:":3000" validate:"required"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"10s"   validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"30s"   validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"   validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"mongo" validate:"oneof=mongo memory"`
}

type MongoConfig struct {
	URI      string        `env:"URI"      envDefault:"mongodb://localhost:27017" validate:"required"`
	Database string        `env:"DATABASE" envDefault:"userDB"                    validate:"required"`
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"10s"                       validate:"gt=0"`
}

type SessionConfig struct {
	Store        string        `env:"STORE"         envDefault:"mongo"   validate:"oneof=mongo redis memory"`
	Lifetime     time.Duration `env:"LIFETIME"      envDefault:"24h"     validate:"gt=0"`
	CookieName   string        `env:"COOKIE_NAME"   envDefault:"session" validate:"required"`
	CookieSecure bool          `env:"COOKIE_SECURE"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379" validate:"required"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"                                   validate:"gte=0"`
}

// OAuthClient is the registration of one federated provider. The Facebook
// variables use the app id/secret naming of the Facebook developer console.
type OAuthClient struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AppID        string `env:"APP_ID"`
	AppSecret    string `env:"APP_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL" validate:"omitempty,url"`
}

// ID returns the client id, whichever variable it was given in.
func (c OAuthClient) ID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.AppID
}

// Secret returns the client secret, whichever variable it was given in.
func (c OAuthClient) Secret() string {
	if c.ClientSecret != "" {
		return c.ClientSecret
	}
	return c.AppSecret
}

// Enabled reports whether the provider has a client id configured.
func (c OAuthClient) Enabled() bool {
	return c.ID() != ""
}

type OAuthConfig struct {
	StateSecret string        `env:"STATE_SECRET" validate:"required,min=16"`
	StateTTL    time.Duration `env:"STATE_TTL"    envDefault:"10m" validate:"gt=0"`
	Timeout     time.Duration `env:"TIMEOUT"      envDefault:"10s" validate:"gt=0"`
}

// PasswordConfig tunes argon2id. Zero values keep the library defaults.
type PasswordConfig struct {
	TimeCost   uint32 `env:"TIME_COST"`
	MemoryCost uint32 `env:"MEMORY_COST"`
}

const (
	defaultGoogleCallbackURL   = "http://localhost:3000/auth/google/secrets"
	defaultFacebookCallbackURL = "http://localhost:3000/auth/facebook/secrets"
)

// Load reads the optional dotenv files (".env" when none are given) into the
// process environment without overriding it, then parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return parse(env.Options{})
}

// Parse builds a Config from environment, ignoring the process environment.
func Parse(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, err
	}

	if cfg.Google.CallbackURL == "" {
		cfg.Google.CallbackURL = defaultGoogleCallbackURL
	}
	if cfg.Facebook.CallbackURL == "" {
		cfg.Facebook.CallbackURL = defaultFacebookCallbackURL
	}

	v, err := validate.New()
	if err != nil {
		return nil, err
	}
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
