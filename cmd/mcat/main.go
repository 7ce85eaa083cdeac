package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	// configErr holds a config file that exists but could not be read
	configErr error

	rootCmd = &cobra.Command{
		Use:   "mcat",
		Short: "Music Catalog - clean and explore a track catalog export",
		Long: `mcat (Music Catalog) loads a tabular export of music tracks, cleans it
into a canonical snapshot and answers questions about it: summaries, top
lists, outliers, categories, search and artist comparison. It can also
write chart datasets and a Markdown data report.

The canonical snapshot is reused by every command. When it is missing, the
raw export is cleaned first and the snapshot is written for next time.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./configs/mcat.yaml)")
	flags.String("raw", "", "raw catalog export (CSV)")
	flags.String("snapshot", "", "canonical snapshot path")
	flags.String("db", "", "run history database file")
	flags.String("artifacts", "", "directory for event logs and reports")
	flags.String("output", "", "directory for chart datasets")
	flags.StringSlice("encodings", nil, "encodings to try for the raw export, in order")
	flags.String("event-level", "", "minimum event log level (debug, info, warning, error)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.BoolP("quiet", "q", false, "quiet output (errors only)")
	flags.Bool("color", true, "colorize output when writing to a terminal")

	// Bind flags to viper
	for _, name := range []string{"raw", "snapshot", "db", "artifacts", "output", "encodings", "event-level", "verbose", "quiet", "color"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("mcat")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("MCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing default config file is fine; a broken one is reported by newApp
	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = err
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
