package devnode

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/blockberries/bquery/types"
)

// state holds the node's application state. Accounts and balances
// are keyed by the raw address bytes.
type state struct {
	accounts          map[string]*types.BaseAccount
	balances          map[string]map[string]*uint256.Int
	nextAccountNumber uint64
}

func newState() *state {
	return &state{
		accounts: make(map[string]*types.BaseAccount),
		balances: make(map[string]map[string]*uint256.Int),
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:          make(map[string]*types.BaseAccount, len(s.accounts)),
		balances:          make(map[string]map[string]*uint256.Int, len(s.balances)),
		nextAccountNumber: s.nextAccountNumber,
	}
	for addr, acct := range s.accounts {
		a := *acct
		c.accounts[addr] = &a
	}
	for addr, denoms := range s.balances {
		c.balances[addr] = make(map[string]*uint256.Int, len(denoms))
		for d, v := range denoms {
			c.balances[addr][d] = v.Clone()
		}
	}
	return c
}

// ensureAccount returns the account at raw, creating it with the next
// account number if needed.
func (s *state) ensureAccount(raw []byte, bech32 string) *types.BaseAccount {
	if acct, ok := s.accounts[string(raw)]; ok {
		return acct
	}
	acct := &types.BaseAccount{Address: bech32, AccountNumber: s.nextAccountNumber}
	s.nextAccountNumber++
	s.accounts[string(raw)] = acct
	return acct
}

func (s *state) balance(raw []byte, denom string) *uint256.Int {
	if v, ok := s.balances[string(raw)][denom]; ok {
		return v
	}
	return new(uint256.Int)
}

func (s *state) setBalance(raw []byte, denom string, v *uint256.Int) {
	key := string(raw)
	if v.IsZero() {
		delete(s.balances[key], denom)
		if len(s.balances[key]) == 0 {
			delete(s.balances, key)
		}
		return
	}
	if s.balances[key] == nil {
		s.balances[key] = make(map[string]*uint256.Int)
	}
	s.balances[key][denom] = v
}

// allBalances lists the balances of raw sorted by denomination.
func (s *state) allBalances(raw []byte) []types.Coin {
	denoms := s.balances[string(raw)]
	out := make([]types.Coin, 0, len(denoms))
	for d, v := range denoms {
		out = append(out, types.Coin{Denom: d, Amount: v.Dec()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}
