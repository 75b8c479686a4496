// Package config loads the msgstore configuration file.
//
// The file is YAML. Missing values take defaults, MSGSTORE_DSN overrides
// database.dsn, and the result is checked against an embedded CUE schema
// before it is returned.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

// EnvDSN overrides database.dsn when set.
const EnvDSN = "MSGSTORE_DSN"

// Defaults applied to empty fields.
const (
	DefaultDriver     = "sqlite3"
	DefaultDSN        = "msgstore.db"
	DefaultSerializer = serializer.NameJSON
	DefaultAddr       = ":8080"
)

// ErrInvalidConfig is returned when the file does not satisfy the schema.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema.cue
var schemaSource []byte

type Config struct {
	Database   Database `yaml:"database" json:"database"`
	Serializer string   `yaml:"serializer" json:"serializer"`
	HTTP       HTTP     `yaml:"http" json:"http"`
}

type Database struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
	// Dialect is derived from Driver when empty.
	Dialect string `yaml:"dialect" json:"dialect,omitempty"`
}

type HTTP struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path. An empty path yields Default() plus
// the environment override.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if dsn := os.Getenv(EnvDSN); dsn != "" {
		cfg.Database.DSN = dsn
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.DSN == "" && c.Database.Driver == DefaultDriver {
		c.Database.DSN = DefaultDSN
	}
	if c.Serializer == "" {
		c.Serializer = DefaultSerializer
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, cueerrors.Details(err, nil))
	}
	return nil
}

// ResolveDialect returns the configured dialect, or the one implied by the
// driver.
func (d Database) ResolveDialect() (sqlbuilder.Dialect, error) {
	if d.Dialect != "" {
		return sqlbuilder.ParseDialect(d.Dialect)
	}
	return sqlbuilder.ParseDialect(d.Driver)
}

// NewSerializer returns the configured payload serializer.
func (c *Config) NewSerializer() (serializer.Serializer, error) {
	return serializer.ByName(c.Serializer)
}
