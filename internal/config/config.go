// Package config loads the exchange server's configuration from a file,
// environment, and command-line flags using github.com/spf13/viper and
// github.com/spf13/pflag, the idiom this corpus's service entrypoints use
// in place of the teacher's hardcoded cmd/main.go constants.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the server binary needs to start.
type Config struct {
	// ListenAddress is the TCP address exchanged accepts client
	// connections on, host:port form.
	ListenAddress string

	// ShardCount is the number of shard worker goroutines Market starts.
	// Symbols are routed to shards by symbol_id mod ShardCount.
	ShardCount int

	// Symbols is the initial set of symbol ids given a book at startup.
	Symbols []uint32

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string

	// PrettyLog selects zerolog's console writer over JSON output.
	PrettyLog bool

	// MetricsAddress is the address /metrics is served on. Empty disables it.
	MetricsAddress string

	// FeedAddress is the address the websocket market-data feed listens
	// on. Empty disables it.
	FeedAddress string
}

func defaults() Config {
	return Config{
		ListenAddress:  "0.0.0.0:9001",
		ShardCount:     4,
		Symbols:        nil,
		LogLevel:       "info",
		PrettyLog:      false,
		MetricsAddress: ":9090",
		FeedAddress:    ":9002",
	}
}

// RegisterFlags adds pflag equivalents of every Config field to fs, the
// way a service entrypoint in this corpus lets flags override a config
// file, which in turn overrides the code defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("listen-address", d.ListenAddress, "TCP address to accept client connections on")
	fs.Int("shard-count", d.ShardCount, "number of matching engine shard workers")
	fs.IntSlice("symbols", nil, "initial set of symbol ids to create books for")
	fs.String("log-level", d.LogLevel, "zerolog level: debug, info, warn, error")
	fs.Bool("pretty-log", d.PrettyLog, "use a human-readable console log writer")
	fs.String("metrics-address", d.MetricsAddress, "address to serve /metrics on, empty disables it")
	fs.String("feed-address", d.FeedAddress, "address the websocket market-data feed listens on, empty disables it")
	fs.String("config", "", "path to a config file (yaml, json, toml)")
}

// Load builds a Config from code defaults, an optional config file, the
// FENRIR_-prefixed environment, and the flags already parsed into fs, in
// increasing order of precedence.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("listen-address", d.ListenAddress)
	v.SetDefault("shard-count", d.ShardCount)
	v.SetDefault("symbols", d.Symbols)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("pretty-log", d.PrettyLog)
	v.SetDefault("metrics-address", d.MetricsAddress)
	v.SetDefault("feed-address", d.FeedAddress)

	v.SetEnvPrefix("fenrir")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	symbols := v.GetIntSlice("symbols")
	symbolIDs := make([]uint32, len(symbols))
	for i, s := range symbols {
		symbolIDs[i] = uint32(s)
	}

	return Config{
		ListenAddress:  v.GetString("listen-address"),
		ShardCount:     v.GetInt("shard-count"),
		Symbols:        symbolIDs,
		LogLevel:       v.GetString("log-level"),
		PrettyLog:      v.GetBool("pretty-log"),
		MetricsAddress: v.GetString("metrics-address"),
		FeedAddress:    v.GetString("feed-address"),
	}, nil
}
