// Package keys derives the exact binary keys the node's key-value
// stores index records under. All functions are pure.
package keys

import "github.com/blockberries/bquery/address"

// Store names as registered with the node. Verified queries address
// a store by its store key, not its module name.
const (
	StoreAuth = "acc"
	StoreBank = "bank"
)

// AccountPrefix marks account records in the auth store.
const AccountPrefix byte = 0x01

// BalancesPrefix namespaces balance records in the bank store. Prefix
// stores concatenate without separators, so the key is simply
// prefix || address || denom.
const BalancesPrefix = "balances"

// AccountKey returns the auth store key of an account.
func AccountKey(addr []byte) []byte {
	key := make([]byte, 0, 1+len(addr))
	key = append(key, AccountPrefix)
	return append(key, addr...)
}

// BalanceKey returns the bank store key of one denomination's balance.
func BalanceKey(addr []byte, denom string) []byte {
	key := make([]byte, 0, len(BalancesPrefix)+len(addr)+len(denom))
	key = append(key, BalancesPrefix...)
	key = append(key, addr...)
	return append(key, denom...)
}

// AccountKeyFromBech32 decodes addr and returns its account key.
func AccountKeyFromBech32(addr, prefix string) ([]byte, error) {
	raw, err := address.Decode(addr, prefix)
	if err != nil {
		return nil, err
	}
	return AccountKey(raw), nil
}

// BalanceKeyFromBech32 decodes addr and returns its balance key for denom.
func BalanceKeyFromBech32(addr, prefix, denom string) ([]byte, error) {
	raw, err := address.Decode(addr, prefix)
	if err != nil {
		return nil, err
	}
	return BalanceKey(raw, denom), nil
}
