package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/insight/pkg/insight/config"
	"github.com/jamesainslie/insight/pkg/insight/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "insight",
		Short: "Inventory a directory tree and report statistics",
		Long: `Insight walks a directory tree, builds a record for every file
(size, timestamps, content type, optional video metadata), and reports
aggregate statistics: totals, per-extension breakdown, age distribution,
and a hierarchical size tree.

Examples:
  insight scan ~/Downloads                 # Scan and print a summary
  insight scan -o report.json .            # Write a JSON report
  insight scan --video-metadata ~/Videos   # Probe video files with ffprobe
  insight scan --store .                   # Persist records to the database
  insight db insights                      # Report over stored records
  insight db clear --yes                   # Wipe the database`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrapLogging()
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/insight/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.SetEnvPrefix("INSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// bootstrapLogging initializes the logging system from viper values.
// With --verbose, everything down to debug also goes to stderr.
func bootstrapLogging() error {
	maxSize, err := humanize.ParseBytes(viper.GetString("logging.rotation.max_size"))
	if err != nil {
		return fmt.Errorf("invalid logging.rotation.max_size: %w", err)
	}

	cfg := logging.Config{
		Level: viper.GetString("logging.level"),
		Path:  viper.GetString("logging.path"),
		Rotation: logging.RotationConfig{
			MaxSize:    int64(maxSize),
			MaxAge:     viper.GetInt("logging.rotation.max_age"),
			MaxBackups: viper.GetInt("logging.rotation.max_backups"),
			Daily:      viper.GetBool("logging.rotation.daily"),
		},
		Components: viper.GetStringMapString("logging.components"),
	}

	if getVerbose() {
		cfg.Level = "debug"
		cfg.ConsoleLevel = "debug"
		cfg.Components = nil // Verbose overrides per-component levels.
	}

	return logging.Init(cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
