package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockberries/bquery/devnode"
	bquerygrpc "github.com/blockberries/bquery/grpc"
	"github.com/blockberries/bquery/types"
)

var cmdDevnode = &cobra.Command{
	Use:   "devnode",
	Short: "Run an in-memory development node over gRPC",
	Args:  cobra.NoArgs,
	RunE:  runDevnode,
}

var flagDevnode struct {
	Listen     string
	ChainID    string
	Fund       []string
	BlockEvery time.Duration
}

func init() {
	cmdMain.AddCommand(cmdDevnode)

	f := cmdDevnode.Flags()
	f.StringVar(&flagDevnode.Listen, "listen", "127.0.0.1:26658", "Address to serve gRPC on")
	f.StringVar(&flagDevnode.ChainID, "chain-id", "devnet-1", "Chain ID reported by the node")
	f.StringArrayVar(&flagDevnode.Fund, "fund", nil, "Genesis allocation, address=1000ucosm[,5stake]")
	f.DurationVar(&flagDevnode.BlockEvery, "block-time", 0, "Commit an empty block at this interval (0 disables)")
}

func runDevnode(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	node := devnode.New(flagDevnode.ChainID,
		devnode.WithLogger(log),
		devnode.WithAddressPrefix(cfg.AddressPrefix),
	)
	for _, alloc := range flagDevnode.Fund {
		addr, coins, err := parseAllocation(alloc)
		if err != nil {
			return err
		}
		if err := node.Fund(addr, coins...); err != nil {
			return fmt.Errorf("fund %s: %w", addr, err)
		}
	}

	lis, err := net.Listen("tcp", flagDevnode.Listen)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := bquerygrpc.NewGRPCServer(node, log).NewServer()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		srv.GracefulStop()
	}()
	if flagDevnode.BlockEvery > 0 {
		go produceBlocks(ctx, node, flagDevnode.BlockEvery)
	}

	log.Info().Str("addr", lis.Addr().String()).Str("chain_id", flagDevnode.ChainID).Msg("devnode listening")
	return srv.Serve(lis)
}

func produceBlocks(ctx context.Context, node *devnode.Node, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			node.AdvanceBlock()
		}
	}
}

// parseAllocation parses "address=100ucosm,5stake".
func parseAllocation(s string) (string, []types.Coin, error) {
	addr, list, ok := strings.Cut(s, "=")
	if !ok || addr == "" || list == "" {
		return "", nil, fmt.Errorf("invalid allocation %q", s)
	}
	var coins []types.Coin
	for _, c := range strings.Split(list, ",") {
		i := strings.IndexFunc(c, func(r rune) bool { return r < '0' || r > '9' })
		if i <= 0 {
			return "", nil, fmt.Errorf("invalid coin %q", c)
		}
		coins = append(coins, types.Coin{Amount: c[:i], Denom: c[i:]})
	}
	return addr, coins, nil
}
