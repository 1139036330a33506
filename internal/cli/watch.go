package cli

import (
	"context"
	"time"

	"github.com/nixdex/nixdex/internal/collect"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/nixdex/nixdex/internal/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var config models.Config
	var sourceKind string
	var declPaths []string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve declared packages when configuration sources change",
		Long: `Resolves once, then watches the given configuration sources and
re-runs resolution whenever one of them changes. Rapid bursts of
writes collapse into a single run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(&config); err != nil {
				return err
			}
			return runWatch(cmd.Context(), &config, sourceKind, declPaths, debounce)
		},
	}

	cmd.Flags().StringVarP(&sourceKind, "source", "s", "system", "Index source: system, flake or channel")
	cmd.Flags().StringSliceVarP(&declPaths, "decl", "d", []string{"/etc/nixos/configuration.nix"}, "Configuration sources declaring packages")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Delay before re-resolving after a change")

	addConfigFlags(cmd, &config)

	return cmd
}

func runWatch(ctx context.Context, config *models.Config, sourceKind string, declPaths []string, debounce time.Duration) error {
	res := resolver.New(*config)

	src, err := sourceFor(ctx, res, config, sourceKind)
	if err != nil {
		return err
	}

	watcher, err := collect.NewWatcher(declPaths, debounce)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	run := func() {
		versions, stats, err := res.ResolveVersions(ctx, src, declPaths)
		if err != nil {
			logrus.Warnf("Resolution failed: %v", err)
			return
		}
		logrus.Infof("Resolved %d of %d declared packages", stats.Resolved, stats.Declared)
		if err := printVersions(versions, false); err != nil {
			logrus.Warnf("Output failed: %v", err)
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			run()
		}
	}
}
