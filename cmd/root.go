package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/whttp"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                 _            __              _
	  ___ _ __(_)_ __ ___   ___ / _| ___  ___  __| |
	 / __| '__| | '_ ' _ \ / _ \ |_ / _ \/ _ \/ _' |
	| (__| |  | | | | | | |  __/  _|  __/  __/ (_| |
	 \___|_|  |_|_| |_| |_|\___|_|  \___|\___|\__,_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crimefeed",
	Short: "Live crime and public-safety feed for St. Kitts and Nevis.",
	Long: LOGO + `crimefeed scrapes local news and government sites, classifies what it finds into
incidents and serves them as a filterable, paginated feed.

When the sources are quiet or unreachable the feed falls back to cached, trend
or simulated data, always labelled with its data tier.`,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.crimefeed.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	viper.BindPFlag("http.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".crimefeed")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CRIMEFEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.crimefeed.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

func setDefaults() {
	viper.SetDefault("http.timeout", whttp.DefaultTimeout.String())
	viper.SetDefault("http.user_agent", whttp.DefaultUserAgent)
	viper.SetDefault("http.retries", whttp.DefaultRetries)
	viper.SetDefault("http.proxy", "")

	viper.SetDefault("aggregator.concurrency", 3)
	viper.SetDefault("aggregator.source_timeout", "15s")

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	viper.SetDefault("refresh.schedule", "@every 10m")
	viper.SetDefault("db.path", "")
	viper.SetDefault("db.lock_wait", "30s")

	viper.SetDefault("sources", defaultSourceSettings())
}

// defaultSourceSettings renders the built-in profiles as plain maps so the
// generated config file stays readable.
func defaultSourceSettings() []map[string]interface{} {
	var out []map[string]interface{}
	for _, c := range sources.DefaultConfigs() {
		entry := map[string]interface{}{
			"id":   c.ID,
			"kind": c.Kind,
		}
		if c.Enabled != nil {
			entry["enabled"] = *c.Enabled
		}
		out = append(out, entry)
	}
	return out
}
