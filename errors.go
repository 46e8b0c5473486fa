package bquery

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// InvalidAddressError reports a malformed account address. It is
// raised locally, before any network call, and is not retryable.
type InvalidAddressError struct {
	Address string
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Address, e.Reason)
}

// QueryError reports a query the node answered with a non-zero code.
type QueryError struct {
	Path string
	Code uint32
	// Log is the backend's log text.
	Log string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed with (%d): %s", e.Path, e.Code, e.Log)
}

// KeyMismatchError reports a verified query whose response carried a
// different key than the one requested. The value cannot be trusted:
// the node is misbehaving or the request was misrouted.
type KeyMismatchError struct {
	Store string
	Want  []byte
	Got   []byte
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("store %s: response key %s doesn't match query key %s",
		e.Store, hexUpper(e.Got), hexUpper(e.Want))
}

// ResultSetTooLargeError reports a search whose results do not fit in
// a single page. Narrow the query (e.g. with a height filter).
type ResultSetTooLargeError struct {
	Total uint64
	Limit uint32
}

func (e *ResultSetTooLargeError) Error() string {
	return fmt.Sprintf("found more results on the backend than we can process currently. Results: %d, supported: %d",
		e.Total, e.Limit)
}

// AccountNotFoundError reports an address with no account on chain.
type AccountNotFoundError struct {
	Address string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s does not exist on chain; send some tokens there before trying to query nonces", e.Address)
}

// FormatError reports a malformed value in a node response (hash,
// height, amount, count).
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ill-formatted %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("ill-formatted %s %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UnsupportedTypeError reports a decoded record type this client
// version does not understand.
type UnsupportedTypeError struct {
	TypeURL string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.TypeURL)
}

// ProofError reports a verified query whose proof was rejected by the
// configured ProofVerifier.
type ProofError struct {
	Store  string
	Key    []byte
	Height uint64
	Reason string
}

func (e *ProofError) Error() string {
	return fmt.Sprintf("store %s: proof for key %s at height %d rejected: %s",
		e.Store, hexUpper(e.Key), e.Height, e.Reason)
}

// IsInvalidAddress checks whether an error is an InvalidAddressError and returns it.
func IsInvalidAddress(err error) (*InvalidAddressError, bool) { return as[*InvalidAddressError](err) }

// IsQueryError checks whether an error is a QueryError and returns it.
func IsQueryError(err error) (*QueryError, bool) { return as[*QueryError](err) }

// IsKeyMismatch checks whether an error is a KeyMismatchError and returns it.
func IsKeyMismatch(err error) (*KeyMismatchError, bool) { return as[*KeyMismatchError](err) }

// IsResultSetTooLarge checks whether an error is a ResultSetTooLargeError and returns it.
func IsResultSetTooLarge(err error) (*ResultSetTooLargeError, bool) {
	return as[*ResultSetTooLargeError](err)
}

// IsAccountNotFound checks whether an error is an AccountNotFoundError and returns it.
func IsAccountNotFound(err error) (*AccountNotFoundError, bool) { return as[*AccountNotFoundError](err) }

// IsFormatError checks whether an error is a FormatError and returns it.
func IsFormatError(err error) (*FormatError, bool) { return as[*FormatError](err) }

// IsUnsupportedType checks whether an error is an UnsupportedTypeError and returns it.
func IsUnsupportedType(err error) (*UnsupportedTypeError, bool) { return as[*UnsupportedTypeError](err) }

// IsProofError checks whether an error is a ProofError and returns it.
func IsProofError(err error) (*ProofError, bool) { return as[*ProofError](err) }

func as[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
