package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/edhtools/deckscope/internal/utils"
)

var cfgFile string

const (
	LOGO = `	     _           _
	  __| | ___  ___| | _____  ___ ___  _ __   ___
	 / _` + "`" + ` |/ _ \/ __| |/ / __|/ __/ _ \| '_ \ / _ \
	| (_| |  __/ (__|   <\__ \ (_| (_) | |_) |  __/
	 \__,_|\___|\___|_|\_\___/\___\___/| .__/ \___|
	                                   |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deckscope",
	Short: "A Commander deck analyzer for Magic: The Gathering.",
	Long: LOGO + `deckscope cross-references your Commander deck against similar decks and
card recommendations, ranks additions and cuts, and tracks which of the
suggested cards you already own.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.deckscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("dbpath", "", "", "Path to SQLite DB file (default is $HOME/.config/deckscope/deckscope.sqlite)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".deckscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.deckscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	viper.SetDefault("scryfall.base_url", "https://api.scryfall.com")
	viper.SetDefault("edhrec.base_url", "https://edhrec.com")
	viper.SetDefault("tappedout.base_url", "https://tappedout.net")
	viper.SetDefault("catalog.ttl_hours", 24)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
