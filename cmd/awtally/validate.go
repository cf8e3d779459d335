package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/goodtune/awtally/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	validateDump bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the awtally configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "Dump full configuration with defaults highlighted")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	// Check for unknown keys (always, not just with -dump)
	unknownKeys, err := findUnknownKeys(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "⚠️  Warning: Could not check for unknown keys: %v\n", err)
	}

	_, _ = fmt.Fprintf(out, "✅ Configuration is valid: %s\n", configPath)

	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(out)
		red.Fprintf(out, "⚠️  WARNING: Found %d unknown configuration key(s):\n", len(unknownKeys))
		for _, key := range unknownKeys {
			red.Fprintf(out, "   - %s\n", key)
		}
		fmt.Fprintln(out, "\nThese keys will be ignored and may indicate typos or deprecated settings.")
	}

	if validateDump {
		_, _ = fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
		_, _ = fmt.Fprintln(out, "FULL CONFIGURATION (values different from defaults are highlighted)")
		_, _ = fmt.Fprintln(out, strings.Repeat("=", 80))

		dumpConfig(out, cfg, config.Default())
	}

	return nil
}

// findUnknownKeys loads the config file and checks for unknown keys
func findUnknownKeys(configPath string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	validKeys := config.ValidKeys()

	unknown := []string{}
	for _, key := range v.AllKeys() {
		if !validKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	return unknown, nil
}

// dumpConfig dumps configuration with color highlighting for non-default values
func dumpConfig(out io.Writer, cfg, defaultCfg *config.Config) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan, color.Bold)

	section := func(name string) {
		_, _ = cyan.Fprintf(out, "\n[%s]\n", name)
	}
	field := func(name string, value, defaultValue any) {
		dumpField(out, "  "+name, value, defaultValue, yellow, green)
	}

	section("server")
	field("bind_address", cfg.Server.BindAddress, defaultCfg.Server.BindAddress)
	field("api_port", cfg.Server.APIPort, defaultCfg.Server.APIPort)
	field("metrics_port", cfg.Server.MetricsPort, defaultCfg.Server.MetricsPort)

	section("storage")
	field("type", cfg.Storage.Type, defaultCfg.Storage.Type)
	field("path", cfg.Storage.Path, defaultCfg.Storage.Path)

	section("storage.redis")
	r, dr := cfg.Storage.Redis, defaultCfg.Storage.Redis
	field("host", r.Host, dr.Host)
	field("port", r.Port, dr.Port)
	field("password", redactPassword(r.Password), redactPassword(dr.Password))
	field("db", r.DB, dr.DB)
	field("pool_size", r.PoolSize, dr.PoolSize)
	field("min_idle_conns", r.MinIdleConns, dr.MinIdleConns)
	field("dial_timeout", r.DialTimeout, dr.DialTimeout)
	field("read_timeout", r.ReadTimeout, dr.ReadTimeout)
	field("write_timeout", r.WriteTimeout, dr.WriteTimeout)
	field("key_prefix", r.KeyPrefix, dr.KeyPrefix)

	section("ingest")
	field("export_dir", cfg.Ingest.ExportDir, defaultCfg.Ingest.ExportDir)
	field("file_prefix", cfg.Ingest.FilePrefix, defaultCfg.Ingest.FilePrefix)
	field("batch_size", cfg.Ingest.BatchSize, defaultCfg.Ingest.BatchSize)
	field("on_startup", cfg.Ingest.OnStartup, defaultCfg.Ingest.OnStartup)

	section("titles")
	field("source", cfg.Titles.Source, defaultCfg.Titles.Source)
	field("app_to_title_path", cfg.Titles.AppToTitlePath, defaultCfg.Titles.AppToTitlePath)
	field("title_to_apps_path", cfg.Titles.TitleToAppsPath, defaultCfg.Titles.TitleToAppsPath)
	field("unmapped_policy", cfg.Titles.UnmappedPolicy, defaultCfg.Titles.UnmappedPolicy)

	section("query")
	field("min_duration_hours", cfg.Query.MinDurationHours, defaultCfg.Query.MinDurationHours)
	field("cache_size", cfg.Query.CacheSize, defaultCfg.Query.CacheSize)

	section("logging")
	field("level", cfg.Logging.Level, defaultCfg.Logging.Level)
	field("format", cfg.Logging.Format, defaultCfg.Logging.Format)

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
}

// dumpField prints a field with color if it differs from default
func dumpField(out io.Writer, name string, value, defaultValue any, modifiedColor, defaultColor *color.Color) {
	valueStr := fmt.Sprintf("%v", value)

	if reflect.DeepEqual(value, defaultValue) {
		_, _ = defaultColor.Fprintf(out, "%s = %s\n", name, valueStr)
	} else {
		_, _ = modifiedColor.Fprintf(out, "%s = %s  (modified from default: %v)\n", name, valueStr, defaultValue)
	}
}

// redactPassword redacts password if not empty
func redactPassword(password string) string {
	if password == "" {
		return ""
	}
	return "***REDACTED***"
}
