package types

// KeyType identifies a cryptographic key algorithm.
type KeyType uint8

const (
	KeyTypeEd25519   KeyType = 1
	KeyTypeSecp256k1 KeyType = 2
)

// String returns the algorithm name.
func (k KeyType) String() string {
	switch k {
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeSecp256k1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// PublicKey is an account's public key as stored on chain.
type PublicKey struct {
	Type KeyType `cramberry:"1"`
	Data []byte  `cramberry:"2"`
}
