package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blockberries/bquery/config"
)

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Run:   printUsageAndExit1,
}

var cmdConfigInit = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(args[0]); err == nil && !flagConfig.Force {
			fatalf("%s already exists, use --force to overwrite", args[0])
		}
		if err := config.Write(args[0], cfg); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", args[0])
		return nil
	},
}

var cmdConfigShow = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), flagMain.Output, cfg)
	},
}

var flagConfig struct {
	Force bool
}

func init() {
	cmdMain.AddCommand(cmdConfig)
	cmdConfig.AddCommand(cmdConfigInit, cmdConfigShow)

	cmdConfigInit.Flags().BoolVarP(&flagConfig.Force, "force", "f", false, "Overwrite an existing file")
}
