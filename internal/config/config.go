// Package config resolves runtime settings from flags, environment
// variables, and an optional config file, in that order of precedence,
// via a small Cobra command wrapping a Viper layer.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BELOTE"

// Config holds everything the server needs to start listening.
type Config struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	SessionSecret  string        `mapstructure:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongTimeout    time.Duration `mapstructure:"pong_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Development    bool          `mapstructure:"development"`
}

func defaults() Config {
	return Config{
		ListenAddr:     ":8080",
		SessionSecret:  "",
		SessionTTL:     10 * time.Minute,
		PingInterval:   30 * time.Second,
		PongTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
		Development:    false,
	}
}

// Load builds a Cobra root command whose flags, bound into a Viper
// instance alongside a BELOTE_-prefixed environment layer and an
// optional config file, populate a Config. run is invoked once the
// command's flags have been parsed.
func Load(args []string, run func(Config) error) error {
	v := viper.New()
	d := defaults()

	root := &cobra.Command{
		Use:           "beloteserver",
		Short:         "Authoritative server for 4-player belote",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, v)

			var cfgFile string
			if f, _ := cmd.Flags().GetString("config"); f != "" {
				cfgFile = f
			}
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("config: reading %s: %w", cfgFile, err)
				}
			} else {
				v.SetConfigName("config")
				v.SetConfigType("yaml")
				v.AddConfigPath(".")
				_ = v.ReadInConfig() // a missing config.yaml is not an error
			}

			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("config: unmarshal: %w", err)
			}
			if cfg.SessionSecret == "" {
				return fmt.Errorf("config: session_secret is required (flag --session-secret, env %s_SESSION_SECRET, or config file)", envPrefix)
			}
			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.String("listen-addr", d.ListenAddr, "address to listen on")
	flags.String("session-secret", d.SessionSecret, "HMAC secret for session tickets")
	flags.Duration("session-ttl", d.SessionTTL, "session ticket lifetime")
	flags.Duration("ping-interval", d.PingInterval, "WebSocket ping interval")
	flags.Duration("pong-timeout", d.PongTimeout, "WebSocket pong read deadline")
	flags.StringSlice("allowed-origins", d.AllowedOrigins, "CORS allowed origins")
	flags.Bool("development", d.Development, "enable development logging")
	flags.String("config", "", "path to a config file (default ./config.yaml if present)")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.SetArgs(args)
	return root.Execute()
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	_ = v.BindPFlag("listen_addr", cmd.Flags().Lookup("listen-addr"))
	_ = v.BindPFlag("session_secret", cmd.Flags().Lookup("session-secret"))
	_ = v.BindPFlag("session_ttl", cmd.Flags().Lookup("session-ttl"))
	_ = v.BindPFlag("ping_interval", cmd.Flags().Lookup("ping-interval"))
	_ = v.BindPFlag("pong_timeout", cmd.Flags().Lookup("pong-timeout"))
	_ = v.BindPFlag("allowed_origins", cmd.Flags().Lookup("allowed-origins"))
	_ = v.BindPFlag("development", cmd.Flags().Lookup("development"))
}
