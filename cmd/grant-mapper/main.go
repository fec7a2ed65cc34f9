// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grant-mapper CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grant-mapper/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the grant-mapper CLI.
var rootCmd = &cobra.Command{
	Use:   "grant-mapper",
	Short: "Map research publications to the grants that funded them",
	Long: `grant-mapper links publications to funding grants. Cheap local heuristics
(investigator name matching and award-period checks) pre-filter the grant
portfolio for each publication; the surviving candidates are scored for
topical relevance by an external AI scoring service, and the highest-
confidence judgment per publication is written to a results CSV.

Runs are batched and resumable: progress and partial results are persisted
whenever the scoring service rate-limits the run or the process is
interrupted, so a restarted run picks up where it left off.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grant-mapper.yaml or ~/.config/grant-mapper/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grant-mapper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grant-mapper"))
		}
	}

	viper.SetEnvPrefix("GRANT_MAPPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
