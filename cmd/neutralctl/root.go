// neutralctl is a command-line client for the Neutral TS IPC template
// server. It renders templates through the server and checks server
// availability.
//
// Configuration sources, in order of precedence:
//  1. Command-line flags (--host, --port, ...)
//  2. Environment variables with the NEUTRAL_IPC_ prefix
//  3. The server's configuration file (/etc/neutral-ipc-cfg.json, or --config)
//  4. Built-in defaults (127.0.0.1:4273, 10s timeout, 8KiB buffer)
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	neutralipc "github.com/neutralts/neutral-ipc-go"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "neutralctl",
	Short: "Client tooling for the Neutral TS IPC template server",
	Long: `neutralctl talks to a running Neutral TS IPC server, which owns all
template parsing and rendering. The tool ships a template reference and a
data schema over TCP and prints what the engine sends back.

Quick start:
  neutralctl check                                 Verify the server answers
  neutralctl render page.ntpl --data data.json     Render a server-side file
  neutralctl render --source 'Hi {:;name:}' \
      --set data.name=World                        Render inline source`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"IPC config file (default "+neutralipc.DefaultConfigFile+")")
	rootCmd.PersistentFlags().String("host", neutralipc.DefaultHost, "IPC server host")
	rootCmd.PersistentFlags().Int("port", neutralipc.DefaultPort, "IPC server port")
	rootCmd.PersistentFlags().Duration("timeout", neutralipc.DefaultTimeout, "connection timeout")
	rootCmd.PersistentFlags().Int("buffer-size", neutralipc.DefaultBufferSize, "read buffer size in bytes")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initEnv() {
	viper.SetEnvPrefix("NEUTRAL_IPC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// clientConfig resolves the connection settings: config file (or defaults),
// then NEUTRAL_IPC_* environment variables, then explicit flags on top.
func clientConfig() (neutralipc.Config, error) {
	var (
		cfg neutralipc.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = neutralipc.LoadConfigFile(cfgFile)
	} else {
		cfg, err = neutralipc.LoadConfig()
	}
	if err != nil {
		return cfg, err
	}

	applyFlagOverrides(rootCmd.PersistentFlags(), &cfg)
	return cfg, cfg.Validate()
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *neutralipc.Config) {
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize, _ = flags.GetInt("buffer-size")
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
