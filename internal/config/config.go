// Package config loads node settings from flags, VW_* environment variables
// and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

const EnvPrefix = "VW"

const (
	FlagHome        = "home"
	FlagAddr        = "addr"
	FlagTransport   = "transport"
	FlagDBBackend   = "db-backend"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagRelayer     = "relayer"
	FlagProofPolicy = "proof-policy"
	FlagConfig      = "config"
)

const (
	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

type Config struct {
	Home        string           `mapstructure:"home"`
	Addr        string           `mapstructure:"addr"`
	Transport   string           `mapstructure:"transport"`
	DBBackend   dbm.BackendType  `mapstructure:"db-backend"`
	LogLevel    string           `mapstructure:"log-level"`
	LogFormat   string           `mapstructure:"log-format"`
	Relayer     string           `mapstructure:"relayer"`
	ProofPolicy game.ProofPolicy `mapstructure:"proof-policy"`
}

func Default() Config {
	return Config{
		Home:        ".vaultwars",
		Addr:        "tcp://127.0.0.1:26658",
		Transport:   "socket",
		DBBackend:   dbm.GoLevelDBBackend,
		LogLevel:    zerolog.InfoLevel.String(),
		LogFormat:   LogFormatPlain,
		ProofPolicy: game.ProofPolicyClear,
	}
}

// DataDir is where the node keeps its database.
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("home must not be empty")
	}
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("unknown transport %q (want socket or grpc)", c.Transport)
	}
	switch c.DBBackend {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q (want plain or json)", c.LogFormat)
	}
	if _, err := game.ParseProofPolicy(string(c.ProofPolicy)); err != nil {
		return err
	}
	return nil
}

// AddFlags registers every setting on fs with its default.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagHome, d.Home, "node home directory (state lives under <home>/data)")
	fs.String(FlagAddr, d.Addr, "ABCI listen address")
	fs.String(FlagTransport, d.Transport, "ABCI transport (socket|grpc)")
	fs.String(FlagDBBackend, string(d.DBBackend), "database backend (goleveldb|memdb)")
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (plain|json)")
	fs.String(FlagRelayer, d.Relayer, "only this signer may advance phases and finalise turns (empty allows anyone)")
	fs.String(FlagProofPolicy, string(d.ProofPolicy), "what happens to revealed proofs when a turn closes (clear|keep)")
	fs.String(FlagConfig, "", "config file (default <home>/config.toml if present)")
}

// Load resolves the configuration. Flags that were set win over VW_*
// environment variables, which win over the config file.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault(FlagHome, d.Home)
	v.SetDefault(FlagAddr, d.Addr)
	v.SetDefault(FlagTransport, d.Transport)
	v.SetDefault(FlagDBBackend, string(d.DBBackend))
	v.SetDefault(FlagLogLevel, d.LogLevel)
	v.SetDefault(FlagLogFormat, d.LogFormat)
	v.SetDefault(FlagRelayer, d.Relayer)
	v.SetDefault(FlagProofPolicy, string(d.ProofPolicy))

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if file := v.GetString(FlagConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(v.GetString(FlagHome))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	policy, err := game.ParseProofPolicy(string(cfg.ProofPolicy))
	if err != nil {
		return Config{}, err
	}
	cfg.ProofPolicy = policy
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the node logger described by c, writing to w.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := []log.Option{log.LevelOption(level)}
	if c.LogFormat == LogFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}
