package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opd-ai/customalbums"
	"github.com/opd-ai/customalbums/asset"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "CUSTOM_ALBUMS"

// DefaultName is the config file name searched for when no path is given.
const DefaultName = "custom_albums"

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the loader configuration.
type Config struct {
	Albums  AlbumsConfig      `mapstructure:"albums"`
	Decode  DecodeConfig      `mapstructure:"decode"`
	Titles  map[string]string `mapstructure:"titles"`
	Logging LoggingConfig     `mapstructure:"logging"`
}

// AlbumsConfig locates the albums.
type AlbumsConfig struct {
	Dir string `mapstructure:"dir"`
	UID int    `mapstructure:"uid"`
}

// DecodeConfig tunes streaming decode.
type DecodeConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size"`
	AutoPromote       bool          `mapstructure:"auto_promote"`
	IterationInterval time.Duration `mapstructure:"iteration_interval"`
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Default returns the configuration matching customalbums.NewOptions.
func Default() *Config {
	o := customalbums.NewOptions()
	return &Config{
		Albums: AlbumsConfig{
			Dir: o.AlbumDir,
			UID: o.UID,
		},
		Decode: DecodeConfig{
			ChunkSize:         o.ChunkSize,
			AutoPromote:       o.AutoPromote,
			IterationInterval: o.IterationInterval,
		},
		Titles: o.Titles,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("albums.dir", d.Albums.Dir)
	v.SetDefault("albums.uid", d.Albums.UID)
	v.SetDefault("decode.chunk_size", d.Decode.ChunkSize)
	v.SetDefault("decode.auto_promote", d.Decode.AutoPromote)
	v.SetDefault("decode.iteration_interval", d.Decode.IterationInterval)
	v.SetDefault("titles", d.Titles)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
}

// Load reads the configuration. With an empty path, custom_albums.yaml is
// looked up in the working directory and UserData/, and a missing file
// yields the defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("UserData")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Titles = canonicalTitles(cfg.Titles)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// canonicalTitles restores the case of known game languages; viper folds
// map keys to lower case.
func canonicalTitles(titles map[string]string) map[string]string {
	known := asset.DefaultTitles()
	out := make(map[string]string, len(titles))
	for lang, title := range titles {
		for k := range known {
			if strings.EqualFold(k, lang) {
				lang = k
				break
			}
		}
		out[lang] = title
	}
	return out
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Albums.Dir == "" {
		return fmt.Errorf("%w: albums.dir is empty", ErrInvalid)
	}
	if c.Albums.UID < 0 {
		return fmt.Errorf("%w: albums.uid %d", ErrInvalid, c.Albums.UID)
	}
	if c.Decode.ChunkSize <= 0 {
		return fmt.Errorf("%w: decode.chunk_size %d", ErrInvalid, c.Decode.ChunkSize)
	}
	if c.Decode.ChunkSize%2 != 0 {
		return fmt.Errorf("%w: decode.chunk_size %d is not a whole number of stereo frames", ErrInvalid, c.Decode.ChunkSize)
	}
	if c.Decode.IterationInterval < 0 {
		return fmt.Errorf("%w: decode.iteration_interval %s", ErrInvalid, c.Decode.IterationInterval)
	}
	return nil
}

// Options converts the configuration into loader options.
func (c *Config) Options() *customalbums.Options {
	o := customalbums.NewOptions()
	o.AlbumDir = c.Albums.Dir
	o.UID = c.Albums.UID
	o.ChunkSize = c.Decode.ChunkSize
	o.AutoPromote = c.Decode.AutoPromote
	o.IterationInterval = c.Decode.IterationInterval
	if len(c.Titles) > 0 {
		o.Titles = c.Titles
	}
	return o
}
