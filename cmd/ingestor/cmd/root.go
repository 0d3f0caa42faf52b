package cmd

import (
	"fmt"
	"os"

	"golang-ingestion-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	dbPath    string
	logFormat string
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Transaction ingestion tool",
	Long: `Ingestor pulls personal finance transactions from CSV exports, provider
APIs, and bank webhooks, normalizes them into a canonical form, and loads
them into the transaction store with duplicate detection.

Examples:
  ingestor ingest-csv --file export.csv --owner 1
  ingestor ingest-api --url https://api.example.com/transactions --owner 1
  ingestor ingest-webhook --payload event.json --event-type payment.created --owner 1
  ingestor version`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "ingestor.db", "path to the transaction database")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		// If a config file is specified, read it in.
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	// Read environment variables that match
	viper.SetEnvPrefix("INGESTOR")
	viper.AutomaticEnv()

	initLogging()
}

// initLogging configures the global logger from the CLI flags.
func initLogging() {
	config := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		config.Level = logger.DebugLevel
	} else {
		config.Level = logger.WarnLevel
	}
	if viper.GetString("log-format") == "json" {
		config.Format = logger.JSONFormat
	}
	config.Output = os.Stderr

	if err := logger.InitGlobalLogger(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %s\n", err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
