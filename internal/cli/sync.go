package cli

import (
	"context"

	"github.com/nixdex/nixdex/internal/models"
	"github.com/nixdex/nixdex/internal/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command
func NewSyncCmd() *cobra.Command {
	var config models.Config
	var sources []string
	var withOptions bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh cached index stores",
		Long: `Checks each requested index against its channel and rebuilds the
local store when the channel moved. Stores that are already fresh are
left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(&config); err != nil {
				return err
			}
			return runSync(cmd.Context(), &config, sources, withOptions)
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", []string{"system"}, "Index sources to refresh: system, flake or channel")
	cmd.Flags().BoolVar(&withOptions, "options", false, "Also refresh the cached options document")

	addConfigFlags(cmd, &config)

	return cmd
}

func runSync(ctx context.Context, config *models.Config, sources []string, withOptions bool) error {
	res := resolver.New(*config)

	for _, kind := range sources {
		src, err := sourceFor(ctx, res, config, kind)
		if err != nil {
			return err
		}
		path, err := res.EnsureIndex(ctx, src)
		if err != nil {
			return err
		}
		logrus.Infof("Store %s is fresh: %s", src.Key, path)
	}

	if withOptions {
		path, err := res.EnsureOptions(ctx)
		if err != nil {
			return err
		}
		logrus.Infof("Options document is fresh: %s", path)
	}
	return nil
}
