package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/sunburst/pkg/sunburst/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sunburst configuration.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/sunburst/config.yaml (if set)
  2. ~/.config/sunburst/config.yaml

Environment variables override the file using the SUNBURST_ prefix:
  SUNBURST_ESTIMATE=count
  SUNBURST_LAYOUT_MAX_LEVELS=8
  SUNBURST_RENDER_COLORER=type`,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			fmt.Fprintf(w, "# Config file: %s\n", used)
		}
	} else {
		fmt.Fprintln(w, "# Config file: none (using defaults)")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, created, err := config.WriteDefault()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created default config file: %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
