// Package config loads figma-happyx settings from defaults, an optional
// figma-happyx.{yaml,toml} file, FIGMA_HAPPYX_* environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable: images.concurrency
// is read from FIGMA_HAPPYX_IMAGES_CONCURRENCY.
const EnvPrefix = "FIGMA_HAPPYX"

// Name is the config file base name.
const Name = "figma-happyx"

type Config struct {
	Token        string `mapstructure:"token"`
	Output       string `mapstructure:"output"`
	IgnoreMarker string `mapstructure:"ignore_marker"`

	Images ImagesConfig `mapstructure:"images"`
	Assets AssetsConfig `mapstructure:"assets"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type ImagesConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type AssetsConfig struct {
	Export bool   `mapstructure:"export"`
	Dir    string `mapstructure:"dir"`
}

// RedisConfig enables the shared image cache when Addr is set.
type RedisConfig struct {
	Addr   string        `mapstructure:"addr"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// SetDefaults configures default values for all keys.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("output", "")
	v.SetDefault("ignore_marker", ".ignore")

	v.SetDefault("images.concurrency", 5)

	v.SetDefault("assets.export", false)
	v.SetDefault("assets.dir", ".")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.prefix", "figma-happyx:image:")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("server.addr", ":8090")

	v.SetDefault("log.json", false)
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up. Nothing is read yet.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The token is also read from the variable the Figma docs use.
	_ = v.BindEnv("token", EnvPrefix+"_TOKEN", "FIGMA_TOKEN")

	SetDefaults(v)

	v.SetConfigName(Name)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", Name))
	}
	return v
}

// BindFlags makes flags override every other source. Flags are bound by
// key; a flag named "ignore-marker" binds "ignore_marker" and "image-concurrency"
// binds "images.concurrency" through the keys map.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flagName, key := range keys {
		f := flags.Lookup(flagName)
		if f == nil {
			return errors.Newf("config: unknown flag %q", flagName)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "config: bind flag %q", flagName)
		}
	}
	return nil
}

// Load reads the config file, if any, and decodes every source into a Config.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read file")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	return &c, nil
}

// LoadFile loads an explicit config file on top of defaults and environment.
func LoadFile(path string) (*Config, error) {
	v := New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrapf(err, "config: decode %s", path)
	}
	return &c, nil
}
