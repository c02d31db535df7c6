package main

import (
	"fmt"
	"os"

	"github.com/aretw0/archsynth/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "archsynth",
	Short: "archsynth searches component architectures by transformation and backtracking",
	Long: `archsynth runs a pipeline of narrow, choose, translate and validate steps
over layered architecture graphs. When a validation fails, the offending
choice is rolled back and the search continues with the remaining values.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("store", "file", "Snapshot store: file, redis, memory or none")
	f.String("dir", "", "Directory of the file store (default .archsynth/snapshots)")
	f.String("redis-addr", "localhost:6379", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")
	f.Duration("ttl", 0, "Expiry of stored snapshots (redis only, 0 keeps them)")
	f.String("encryption-key", "", "32-byte key (hex or base64) encrypting stored snapshots")
	f.StringSlice("fallback-keys", nil, "Retired encryption keys still accepted for reading")
	f.StringSlice("pii", nil, "Parameter name patterns masked before saving")
	f.String("commands", "commands.yaml", "File declaring external checker commands")
	f.Int("max-attempts", 0, "Abort the search after this many attempts (0 is unlimited)")
	f.Bool("debug", false, "Log search events to stderr")
	f.String("log-level", "", "Log level: debug, info, warn or error (empty disables logs)")
	f.String("log-format", "text", "Log format: text or json")
}

// sharedOptions reads the persistent flags.
func sharedOptions(cmd *cobra.Command) cli.Options {
	f := cmd.Flags()
	var o cli.Options
	o.Store.Kind, _ = f.GetString("store")
	o.Store.Dir, _ = f.GetString("dir")
	o.Store.RedisAddr, _ = f.GetString("redis-addr")
	o.Store.RedisPassword, _ = f.GetString("redis-password")
	o.Store.RedisDB, _ = f.GetInt("redis-db")
	o.Store.TTL, _ = f.GetDuration("ttl")
	o.Store.EncryptionKey, _ = f.GetString("encryption-key")
	o.Store.FallbackKeys, _ = f.GetStringSlice("fallback-keys")
	o.Store.PIIPatterns, _ = f.GetStringSlice("pii")
	o.CommandsPath, _ = f.GetString("commands")
	o.MaxAttempts, _ = f.GetInt("max-attempts")
	o.Debug, _ = f.GetBool("debug")
	o.LogLevel, _ = f.GetString("log-level")
	o.LogFormat, _ = f.GetString("log-format")
	return o
}
