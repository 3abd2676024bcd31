// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the knowledge-publisher CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the knowledge-publisher CLI.
var rootCmd = &cobra.Command{
	Use:   "knowledge-publisher",
	Short: "Publish Jupyter notebooks to a knowledge repository",
	Long: `knowledge-publisher walks a directory of Jupyter notebooks, prepends the
metadata header and source-link cells a knowledge repository expects, and
registers each converted notebook with the knowledge_repo CLI. Creation and
update dates are taken from git history.

Use the publish subcommand for batch conversion and history to inspect the
publication ledger.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./knowledge-publisher.yaml or ~/.config/knowledge-publisher/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("knowledge-publisher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "knowledge-publisher"))
		}
	}

	viper.SetEnvPrefix("KNOWLEDGE_PUBLISHER")
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
