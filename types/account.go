package types

// BaseAccountTypeURL tags a BaseAccount inside an Any envelope.
const BaseAccountTypeURL = "/bquery.auth.BaseAccount"

// Coin is an amount of a single denomination. Amount is a decimal
// integer string.
type Coin struct {
	Denom  string `cramberry:"1"`
	Amount string `cramberry:"2"`
}

// BaseAccount is the account record stored in the auth store.
type BaseAccount struct {
	Address       string     `cramberry:"1"`
	PubKey        *PublicKey `cramberry:"2"`
	AccountNumber uint64     `cramberry:"3"`
	Sequence      uint64     `cramberry:"4"`
}

// Account is the caller-facing projection of an on-chain account.
type Account struct {
	// Bech32 account address.
	Address       string
	Balances      []Coin
	PubKey        *PublicKey
	AccountNumber uint64
	Sequence      uint64
}

// Nonce is the replay-protection data needed to sign for an account.
type Nonce struct {
	AccountNumber uint64
	Sequence      uint64
}
