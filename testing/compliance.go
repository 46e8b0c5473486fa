package bquerytest

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/keys"
	"github.com/blockberries/bquery/query"
	"github.com/blockberries/bquery/search"
	"github.com/blockberries/bquery/txid"
	"github.com/blockberries/bquery/types"
)

var hashPattern = regexp.MustCompile(`^([0-9A-F][0-9A-F])+$`)

// Genesis describes the state a node factory must start from.
type Genesis struct {
	ChainID  string
	Balances map[string][]types.Coin
}

// NodeFactory returns a fresh node initialized with genesis.
type NodeFactory func(t *testing.T, genesis Genesis) bquery.Node

// RunComplianceSuite checks that a node honors the contract the
// client relies on: store lookups echo their key, unknown paths fail
// with a code rather than an error, broadcasts report the node's
// transaction hash, and the index finds what was broadcast.
func RunComplianceSuite(t *testing.T, factory NodeFactory) {
	t.Helper()

	alice, bob := Address(1), Address(2)
	genesis := func() Genesis {
		return Genesis{
			ChainID:  "compliance-1",
			Balances: map[string][]types.Coin{alice: Coins("1000", "ucosm")},
		}
	}

	t.Run("store_lookup_echoes_key", func(t *testing.T) {
		node := factory(t, genesis())
		h := NewHarness(t, node)
		acct := h.Account(alice)
		if acct == nil {
			t.Fatal("expected funded account to exist")
		}
		if acct.Address != alice {
			t.Errorf("address: got %s, want %s", acct.Address, alice)
		}
		if len(acct.Balances) != 1 || acct.Balances[0].Amount != "1000" {
			t.Errorf("unexpected balances %+v", acct.Balances)
		}
	})

	t.Run("missing_account_is_empty", func(t *testing.T) {
		node := factory(t, genesis())
		h := NewHarness(t, node)
		if acct := h.Account(bob); acct != nil {
			t.Errorf("expected nil account, got %+v", acct)
		}
		if coin := h.Balance(bob, "ucosm"); coin != nil {
			t.Errorf("expected nil balance, got %+v", coin)
		}
	})

	t.Run("unknown_path_fails_with_code", func(t *testing.T) {
		node := factory(t, genesis())
		res, err := node.Query(context.Background(), types.StateQuery{Path: "/no/such/path"})
		if err != nil {
			t.Fatalf("unknown path returned a transport error: %v", err)
		}
		if res.OK() {
			t.Error("unknown path answered with code 0")
		}
		_, err = query.New(node).QueryVerified(context.Background(), "nosuchstore", []byte{1})
		if _, ok := bquery.IsQueryError(err); !ok {
			t.Errorf("expected QueryError for unknown store, got %v", err)
		}
	})

	t.Run("chain_id", func(t *testing.T) {
		node := factory(t, genesis())
		id, err := NewHarness(t, node).Client().GetChainID(context.Background())
		if err != nil {
			t.Fatalf("GetChainID: %v", err)
		}
		if id != "compliance-1" {
			t.Errorf("chain ID: got %q", id)
		}
	})

	t.Run("broadcast_hash_is_identifier", func(t *testing.T) {
		node := factory(t, genesis())
		h := NewHarness(t, node)
		tx := SendTx(alice, bob, Coins("10", "ucosm")...)

		want, err := h.Client().GetIdentifier(context.Background(), tx)
		if err != nil {
			t.Fatalf("GetIdentifier: %v", err)
		}
		result := h.Broadcast(tx)
		if got := result.TransactionHash(); got != want || !hashPattern.MatchString(got) {
			t.Errorf("hash: got %s, want %s", got, want)
		}

		encoded, err := codec.Marshal(&tx)
		if err != nil {
			t.Fatal(err)
		}
		if want != txid.Compute(encoded) {
			t.Errorf("identifier %s is not the hash of the canonical encoding", want)
		}
	})

	t.Run("broadcast_then_search", func(t *testing.T) {
		node := factory(t, genesis())
		h := NewHarness(t, node)
		hash := h.Send(alice, bob, Coins("10", "ucosm")...)

		byID := h.Search(search.ByID{ID: hash}, search.Filter{})
		if len(byID) != 1 || byID[0].Hash != hash {
			t.Fatalf("search by id: got %+v", byID)
		}
		byHeight := h.Search(search.ByHeight{Height: byID[0].Height}, search.Filter{})
		if len(byHeight) != 1 || byHeight[0].Hash != hash {
			t.Errorf("search by height: got %+v", byHeight)
		}
		received := h.Search(search.BySentFromOrTo{Address: bob}, search.Filter{})
		if len(received) != 1 || received[0].Hash != hash {
			t.Errorf("search received: got %+v", received)
		}
		if coin := h.Balance(bob, "ucosm"); coin == nil || coin.Amount != "10" {
			t.Errorf("recipient balance: got %+v", coin)
		}
	})

	t.Run("rejected_broadcast_is_failure", func(t *testing.T) {
		node := factory(t, genesis())
		h := NewHarness(t, node)
		result := h.Broadcast(SendTx(alice, bob, Coins("5000", "ucosm")...))
		f, failed := types.IsBroadcastFailure(result)
		if !failed {
			t.Fatalf("overdraft accepted: %+v", result)
		}
		if f.Code == 0 || f.Height == 0 {
			t.Errorf("failure lacks code or height: %+v", f)
		}
	})

	t.Run("concurrent_queries", func(t *testing.T) {
		node := factory(t, genesis())
		key, err := keys.AccountKeyFromBech32(alice, DefaultPrefix)
		if err != nil {
			t.Fatal(err)
		}
		gw := query.New(node)

		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := gw.QueryVerified(context.Background(), keys.StoreAuth, key); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent query: %v", err)
		}
	})
}
