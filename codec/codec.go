// Package codec is the binary codec for every record exchanged with
// the node. It is a thin layer over cramberry plus the type-tagged Any
// envelope used for polymorphic records such as accounts.
package codec

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/bquery/types"
)

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return nil
}

// EncodeAny encodes v and wraps it in an Any tagged with typeURL.
func EncodeAny(typeURL string, v any) ([]byte, error) {
	inner, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	return Marshal(&types.Any{TypeURL: typeURL, Value: inner})
}

// DecodeAny unwraps an Any envelope.
func DecodeAny(data []byte) (typeURL string, value []byte, err error) {
	var a types.Any
	if err := Unmarshal(data, &a); err != nil {
		return "", nil, err
	}
	return a.TypeURL, a.Value, nil
}
