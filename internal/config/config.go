package config

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"

	"github.com/osnetwork/go-auth"
)

const EnvPrefix = "OSN"

// Keys shared with command flags
const (
	LogLevelKey         = "log.level"
	LogFormatKey        = "log.format"
	LogNoColorKey       = "log.no_color"
	ServerAddrKey       = "server.addr"
	StoreDriverKey      = "store.driver"
	StoreDSNKey         = "store.dsn"
	SigningKeyKey       = "auth.signing_key"
	EnforceOwnershipKey = "server.enforce_ownership"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Auth   auth.Options `mapstructure:"auth"`
	Store  Store        `mapstructure:"store"`
	Server Server       `mapstructure:"server"`
	Log    Log          `mapstructure:"log"`
}

type Store struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type Server struct {
	Addr             string `mapstructure:"addr"`
	EnforceOwnership bool   `mapstructure:"enforce_ownership"`
	PhoneRegion      string `mapstructure:"phone_region"`
	Metrics          bool   `mapstructure:"metrics"`
}

type Log struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// New returns a viper instance reading OSN_* variables, e.g.
// OSN_AUTH_SIGNING_KEY for auth.signing_key.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every key so environment overrides reach Unmarshal
func SetDefaults(v *viper.Viper) {
	def := auth.DefaultOptions()
	v.SetDefault(SigningKeyKey, "")
	v.SetDefault("auth.signing_method", def.SigningMethod)
	v.SetDefault("auth.context_key", def.ContextKey)
	v.SetDefault("auth.token_expiration", def.TokenExpiration)
	v.SetDefault("auth.token_lookup", def.TokenLookup)
	v.SetDefault("auth.auth_scheme", def.AuthScheme)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", []string{})
	v.SetDefault("auth.password_hash_cost", def.PasswordHashCost)

	v.SetDefault(StoreDriverKey, DriverSQLite)
	v.SetDefault(StoreDSNKey, "file:osnauth.db?cache=shared")
	v.SetDefault("store.migrate", true)

	v.SetDefault(ServerAddrKey, ":5000")
	v.SetDefault(EnforceOwnershipKey, false)
	v.SetDefault("server.phone_region", "US")
	v.SetDefault("server.metrics", true)

	v.SetDefault(LogLevelKey, "info")
	v.SetDefault(LogFormatKey, "console")
	v.SetDefault(LogNoColorKey, false)
}

// ReadFile loads path, or searches the working directory for osnauth.yaml.
// A missing file is not an error, the returned path is then empty.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("osnauth")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
		return "", nil
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}

	err := validation.ValidateStruct(&c.Store,
		validation.Field(&c.Store.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.Store.DSN, validation.Required),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid store config")
	}

	err = validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Addr, validation.Required),
		validation.Field(&c.Server.PhoneRegion, validation.Required, validation.Length(2, 2)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid server config")
	}

	return nil
}
