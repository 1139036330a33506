package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nixdex/nixdex/internal/index"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/nixdex/nixdex/internal/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	var config models.Config
	var sourceKind string
	var declPaths []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve declared packages to their channel versions",
		Long: `Collects the packages declared in the given configuration sources,
refreshes the matching index store when the channel moved, and prints
the version each declared package resolves to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(&config); err != nil {
				return err
			}

			logrus.Debugf("Configuration: %+v", config)

			return runResolve(cmd.Context(), &config, sourceKind, declPaths, jsonOut)
		},
	}

	// Source selection flags
	cmd.Flags().StringVarP(&sourceKind, "source", "s", "system", "Index source: system, flake or channel")
	cmd.Flags().StringSliceVarP(&declPaths, "decl", "d", []string{"/etc/nixos/configuration.nix"}, "Configuration sources declaring packages")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")

	addConfigFlags(cmd, &config)

	return cmd
}

// addConfigFlags binds the shared cache configuration to cmd.
func addConfigFlags(cmd *cobra.Command, config *models.Config) {
	cmd.Flags().StringVar(&config.CacheDir, "cache-dir", "", "Cache directory (default user cache dir)")
	cmd.Flags().StringVar(&config.ChannelsURL, "channels-url", "", "Base URL of the channels server")
	cmd.Flags().StringVar(&config.Channel, "channel", "", "Legacy channel name for the channel source")
	cmd.Flags().StringVar(&config.Release, "release", "", "OS release override (default probed from the system)")
	cmd.Flags().StringVar(&config.Loader, "loader", "", "Bulk loader: insert or sqlite3")
	cmd.Flags().StringVar(&config.Sqlite3Path, "sqlite3-path", "", "Path to the sqlite3 binary for the sqlite3 loader")
	cmd.Flags().StringVar(&config.DeclKey, "key", "", "Declaration key holding the package list")
	cmd.Flags().DurationVar(&config.HTTPTimeout, "timeout", 0, "HTTP timeout for index downloads")
}

// resolveConfig fills fields not set on the command line from the viper
// environment, then applies the package defaults and validates the
// result.
func resolveConfig(config *models.Config) error {
	if config.CacheDir == "" {
		config.CacheDir = viper.GetString("cache_dir")
	}
	if config.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return &models.IndexError{Type: models.ErrConfigRead, Err: err}
		}
		config.CacheDir = filepath.Join(base, "nixdex")
	}
	if config.ChannelsURL == "" {
		config.ChannelsURL = viper.GetString("channels_url")
	}
	if config.Channel == "" {
		config.Channel = viper.GetString("channel")
	}
	if config.Release == "" {
		config.Release = viper.GetString("release")
	}
	if config.Loader == "" {
		config.Loader = viper.GetString("loader")
	}
	if config.Sqlite3Path == "" {
		config.Sqlite3Path = viper.GetString("sqlite3_path")
	}
	if config.DeclKey == "" {
		config.DeclKey = viper.GetString("decl_key")
	}
	config.ApplyDefaults()

	if config.Loader != models.LoaderInsert && config.Loader != models.LoaderSqlite3 {
		return &models.IndexError{
			Type: models.ErrConfigRead,
			Err:  fmt.Errorf("unknown loader %q (expected %s or %s)", config.Loader, models.LoaderInsert, models.LoaderSqlite3),
		}
	}
	return nil
}

func runResolve(ctx context.Context, config *models.Config, sourceKind string, declPaths []string, jsonOut bool) error {
	res := resolver.New(*config)

	src, err := sourceFor(ctx, res, config, sourceKind)
	if err != nil {
		return err
	}

	versions, stats, err := res.ResolveVersions(ctx, src, declPaths)
	if err != nil {
		return err
	}

	logrus.Infof("Resolved %d of %d declared packages", stats.Resolved, stats.Declared)

	return printVersions(versions, jsonOut)
}

// sourceFor maps the source flag to its index source.
func sourceFor(ctx context.Context, res *resolver.Resolver, config *models.Config, kind string) (index.Source, error) {
	switch kind {
	case "system":
		return res.SystemSource(ctx)
	case "flake":
		return index.FlakeSource(), nil
	case "channel":
		return index.ChannelSource(config.Channel), nil
	default:
		return index.Source{}, &models.IndexError{
			Type: models.ErrConfigRead,
			Err:  fmt.Errorf("unknown source %q (expected system, flake or channel)", kind),
		}
	}
}

func printVersions(versions map[string]string, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(versions)
	}

	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s\t%s\n", name, versions[name])
	}
	return nil
}
