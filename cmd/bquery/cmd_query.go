package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blockberries/bquery/client"
)

var cmdAccount = &cobra.Command{
	Use:   "account [address]",
	Short: "Show an account with its balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetAccount(ctx, args[0])
		})
	},
}

var cmdNonce = &cobra.Command{
	Use:   "nonce [address]",
	Short: "Show the account number and sequence of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetNonce(ctx, args[0])
		})
	},
}

var cmdBalance = &cobra.Command{
	Use:   "balance [address] [denom]",
	Short: "Show the balance of one denomination",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetBalance(ctx, args[0], args[1])
		})
	},
}

var cmdBalances = &cobra.Command{
	Use:   "balances [address]",
	Short: "Show every balance held by an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetAllBalances(ctx, args[0])
		})
	},
}

var cmdBlock = &cobra.Command{
	Use:   "block [height]",
	Short: "Show a block, or the latest block if no height is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var height *uint64
		if len(args) == 1 {
			h, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			height = &h
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetBlock(ctx, height)
		})
	},
}

var cmdHeight = &cobra.Command{
	Use:   "height",
	Short: "Show the latest block height",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetHeight(ctx)
		})
	},
}

var cmdChainID = &cobra.Command{
	Use:   "chain-id",
	Short: "Show the chain ID of the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
			return c.GetChainID(ctx)
		})
	},
}

func init() {
	cmdMain.AddCommand(cmdAccount, cmdNonce, cmdBalance, cmdBalances, cmdBlock, cmdHeight, cmdChainID)
}
