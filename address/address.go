// Package address converts between bech32 account addresses and the
// raw bytes used in store keys.
package address

import (
	"strings"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/blockberries/bquery"
)

// Length is the size in bytes of a decoded account address.
const Length = 20

// Decode decodes a bech32 address into its raw bytes. If prefix is
// non-empty the address's human-readable part must equal it.
func Decode(addr, prefix string) ([]byte, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, &bquery.InvalidAddressError{Address: addr, Reason: err.Error()}
	}
	if prefix != "" && hrp != prefix {
		return nil, &bquery.InvalidAddressError{Address: addr, Reason: "unsupported prefix " + hrp}
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, &bquery.InvalidAddressError{Address: addr, Reason: err.Error()}
	}
	if len(decoded) != Length {
		return nil, &bquery.InvalidAddressError{Address: addr, Reason: "invalid length"}
	}
	return decoded, nil
}

// Encode renders raw address bytes as bech32 with the given prefix.
func Encode(prefix string, raw []byte) (string, error) {
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(strings.ToLower(prefix), conv)
}

// MustEncode is Encode for inputs known to be valid, such as test
// fixtures. It panics on error.
func MustEncode(prefix string, raw []byte) string {
	s, err := Encode(prefix, raw)
	if err != nil {
		panic(err)
	}
	return s
}
