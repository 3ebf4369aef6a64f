// Package ovconfig loads node configuration from a TOML file, a dotenv file
// and OV_-prefixed environment variables, in increasing order of precedence.
package ovconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"unicode"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/naoina/toml"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/params"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OV_"

// Database engines.
const (
	EngineLevelDB = "leveldb"
	EngineSQLite  = "sqlite"
	EngineMemory  = "memory"
)

// Config is the full node configuration.
type Config struct {
	DataDir string             `env:"DATADIR"`
	DB      DBConfig           `envPrefix:"DB_"`
	Log     LogConfig          `envPrefix:"LOG_"`
	HTTP    HTTPConfig         `envPrefix:"HTTP_"`
	Exec    ExecConfig         `envPrefix:"EXEC_"`
	Chain   params.ChainConfig `envPrefix:"CHAIN_"`
}

// DBConfig selects and tunes the record store backend.
type DBConfig struct {
	Engine     string `env:"ENGINE"`
	Cache      int    `env:"CACHE"`   // leveldb block cache in MiB
	Handles    int    `env:"HANDLES"` // leveldb open files
	StateCache int    `env:"STATE_CACHE"`
}

type LogConfig struct {
	Level string `env:"LEVEL"`
	JSON  bool   `env:"JSON"`
}

// HTTPConfig configures the read-only query server.
type HTTPConfig struct {
	Addr        string   `env:"ADDR"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	RateLimit   float64  `env:"RATE_LIMIT"` // requests per second, 0 disables
	RateBurst   int      `env:"RATE_BURST"`
}

// ExecConfig configures batch execution.
type ExecConfig struct {
	Parallel bool `env:"PARALLEL"`
	Workers  int  `env:"WORKERS"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		DataDir: "ovchain-data",
		DB: DBConfig{
			Engine:  EngineLevelDB,
			Cache:   64,
			Handles: 256,
		},
		Log: LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:        "127.0.0.1:8645",
			CORSOrigins: []string{"*"},
			RateLimit:   50,
			RateBurst:   100,
		},
		Chain: *params.DefaultChainConfig,
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadFile decodes the TOML file into cfg.
func LoadFile(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Load builds the configuration: defaults, then file (if set), then the
// dotenv file (if present), then the environment. The result is validated.
func Load(file, dotenv string) (*Config, error) {
	cfg := Defaults()
	if file != "" {
		if err := LoadFile(file, cfg); err != nil {
			return nil, err
		}
	}
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dotenv %s: %w", dotenv, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from OV_-prefixed environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Validate checks cfg and canonicalizes its policy names.
func (c *Config) Validate() error {
	switch c.DB.Engine {
	case EngineLevelDB, EngineSQLite, EngineMemory:
	default:
		return fmt.Errorf("unknown database engine %q", c.DB.Engine)
	}
	if c.DB.Engine != EngineMemory && c.DataDir == "" {
		return errors.New("data directory not set")
	}
	if c.Exec.Workers < 0 {
		return fmt.Errorf("negative worker count %d", c.Exec.Workers)
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return errors.New("negative rate limit")
	}
	if err := c.Chain.Normalize(); err != nil {
		return err
	}
	log.Debug("Loaded configuration", "engine", c.DB.Engine, "datadir", c.DataDir, "chain", c.Chain.String())
	return nil
}

// Dump encodes cfg as TOML.
func Dump(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
