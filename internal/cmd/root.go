package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liquers/liquers-go/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "liquers",
	Short: "Reactive query consoles over a lazy evaluation pipeline",
	Long: `Liquers evaluates slash-separated query pipelines in the background
and pushes result snapshots to interactive consoles as they change.
Queries are cached by text; store changes invalidate dependent results
and observers receive fresh values automatically.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/liquers/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("store", "", "store root directory")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	if err := config.Init(viper.GetString("config")); err != nil {
		cobra.CheckErr(err)
	}
}
