package main

import (
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/customalbums/album"
	"github.com/opd-ai/customalbums/config"
)

type commandContext struct {
	configFlag *string
	albumsFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, albumsFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		albumsFlag: albumsFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.albumsFlag != nil && strings.TrimSpace(*c.albumsFlag) != "" {
			cfg.Albums.Dir = strings.TrimSpace(*c.albumsFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadAlbums opens every album under the configured directory. The caller
// closes the registry.
func (c *commandContext) loadAlbums() (*album.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return album.Load(cfg.Albums.Dir)
}

// configureLogging sends loader logs to stderr, and only warnings unless
// --verbose is set.
func (c *commandContext) configureLogging(errOut io.Writer) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logging := cfg.Logging
	if c.verbose == nil || !*c.verbose {
		logging.Level = "warn"
	}
	logging.File = ""
	if _, err := config.SetupLogger(nil, logging); err != nil {
		return err
	}
	logrus.SetOutput(errOut)
	return nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var albumsFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &albumsFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:           "albumctl",
		Short:         "Inspect custom albums the way the game loader sees them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.configureLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&albumsFlag, "albums", "", "Album directory (overrides albums.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show loader logs below warning level")

	rootCmd.AddCommand(newAlbumsCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newManifestCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand(ctx))

	return rootCmd
}
