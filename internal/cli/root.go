package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nixdex",
		Short: "Resolve declared NixOS packages against cached channel indexes",
		Long: `Nixdex keeps local store caches of the NixOS package indexes and
resolves the packages declared in system configurations to the
version the current channel ships.

Supported index sources:
  - system (extended index of the release channel, with metadata)
  - flake (plain index of nixpkgs-unstable)
  - channel (plain index of a named legacy channel)`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	cobra.OnInitialize(func() { initConfig(rootCmd) })

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default .nixdex.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewSyncCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

func initConfig(rootCmd *cobra.Command) {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".nixdex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("NIXDEX")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
