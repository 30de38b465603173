package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-pgx/internal/analysis"
	"github.com/inodb/vibe-pgx/internal/report"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

const (
	configName = ".vibe-pgx"
	envPrefix  = "VIBE_PGX"
)

// Settings mirrors the config file.
type Settings struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Parse struct {
		FilterChromosomes bool   `mapstructure:"filter_chromosomes"`
		FailOn            string `mapstructure:"fail_on"`
	} `mapstructure:"parse"`
	Cache struct {
		Size      int    `mapstructure:"size"`
		DB        string `mapstructure:"db"`
		DBMaxRows int    `mapstructure:"db_max_rows"`
	} `mapstructure:"cache"`
	Analyze struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"analyze"`
	Report struct {
		PatientID string `mapstructure:"patient_id"`
	} `mapstructure:"report"`
}

var settings Settings

func setDefaults() {
	def := analysis.DefaultConfig()
	viper.SetDefault("log.level", "info")
	viper.SetDefault("parse.filter_chromosomes", def.FilterChromosomes)
	viper.SetDefault("parse.fail_on", string(def.FailOn))
	viper.SetDefault("cache.size", def.CacheSize)
	viper.SetDefault("cache.db", "")
	viper.SetDefault("cache.db_max_rows", def.StoreMaxRows)
	viper.SetDefault("analyze.workers", 0)
	viper.SetDefault("report.patient_id", report.DefaultPatientID)
}

// initConfig loads defaults, the config file and VIBE_PGX_* environment
// variables into settings. A missing default config file is not an error.
func initConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := viper.Unmarshal(&settings); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// serviceConfig converts settings to an analysis configuration.
func serviceConfig(s Settings) (analysis.Config, error) {
	failOn, err := vcf.ParseSeverity(s.Parse.FailOn)
	if err != nil {
		return analysis.Config{}, usagef("parse.fail_on: %v", err)
	}
	return analysis.Config{
		FailOn:            failOn,
		FilterChromosomes: s.Parse.FilterChromosomes,
		CacheSize:         s.Cache.Size,
		StoreMaxRows:      s.Cache.DBMaxRows,
		Workers:           s.Analyze.Workers,
	}, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-pgx configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-pgx.yaml.",
		Example: `  vibe-pgx config                          # show all config
  vibe-pgx config set parse.fail_on error   # reject files with malformed records
  vibe-pgx config set cache.db ~/.vibe-pgx/cache.duckdb
  vibe-pgx config get cache.size            # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# Config file: %s\n", used)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	// Reject values the analysis would refuse later
	var probe Settings
	if err := viper.Unmarshal(&probe); err != nil {
		return usagef("invalid value for %s: %v", key, err)
	}
	if _, err := serviceConfig(probe); err != nil {
		return err
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if !viper.IsSet(key) {
		return usagef("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
	return nil
}
