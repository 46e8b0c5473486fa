package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockberries/bquery/client"
	"github.com/blockberries/bquery/config"
	"github.com/blockberries/bquery/logging"
)

var cmdMain = &cobra.Command{
	Use:          "bquery",
	Short:        "Query accounts, blocks and transactions on a chain node",
	SilenceUsage: true,
	Run:          printUsageAndExit1,
}

var flagMain struct {
	Config  string
	Output  string
	Timeout time.Duration
}

// v collects configuration from the config file, BQUERY_* variables
// and the persistent flags bound below.
var v = viper.New()

func init() {
	flags := cmdMain.PersistentFlags()
	flags.StringVarP(&flagMain.Config, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&flagMain.Output, "output", "o", formatYAML, "Output format (yaml|json)")
	flags.DurationVar(&flagMain.Timeout, "timeout", 30*time.Second, "Timeout of a single command")

	d := config.Default()
	flags.String("endpoint", d.Endpoint, "Node gRPC endpoint")
	flags.Bool("insecure", d.Insecure, "Dial without TLS")
	flags.String("prefix", d.AddressPrefix, "Expected bech32 address prefix")
	flags.Bool("require-proof", d.RequireProof, "Reject verified queries answered without a proof")
	flags.String("encoder", d.Encoder, "Transaction encoding for identifiers (local|remote)")
	flags.String("log-level", d.Log.Level, "Log level")
	flags.String("log-format", d.Log.Format, "Log format (plain|json)")

	bind := map[string]string{
		"endpoint":       "endpoint",
		"insecure":       "insecure",
		"address_prefix": "prefix",
		"require_proof":  "require-proof",
		"encoder":        "encoder",
		"log.level":      "log-level",
		"log.format":     "log-format",
	}
	for key, flag := range bind {
		check(v.BindPFlag(key, flags.Lookup(flag)))
	}
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

// loadConfig resolves the configuration and the logger it describes.
func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(v, flagMain.Config)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// withClient connects to the configured node, runs fn and prints its
// result.
func withClient(cmd *cobra.Command, fn func(context.Context, *client.Client) (interface{}, error)) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagMain.Timeout)
	defer cancel()

	c, err := client.Connect(ctx, cfg, client.WithLogger(log))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Endpoint, err)
	}
	defer c.Close()

	out, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), flagMain.Output, out)
}
