// Package normalize converts the node's wire records into the typed
// results returned to callers. Every function is pure: malformed input
// yields a *bquery.FormatError and never a partial result.
package normalize

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/types"
)

var hashPattern = regexp.MustCompile(`^([0-9A-F][0-9A-F])+$`)

var (
	errEmpty      = errors.New("empty")
	errEventKind  = errors.New("event without a type")
	errAttrKey    = errors.New("attribute without a key")
	errEmptyDenom = errors.New("empty denomination")
)

// Uint parses a decimal counter reported by the node. field names the
// value in the returned error.
func Uint(field, value string) (uint64, error) {
	if value == "" {
		return 0, &bquery.FormatError{Field: field, Value: value, Err: errEmpty}
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &bquery.FormatError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

// optionalUint parses a decimal value that the node may leave out.
func optionalUint(field, value string) (*uint64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := Uint(field, value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Hash validates a transaction hash: non-empty uppercase hex.
func Hash(value string) (string, error) {
	if !hashPattern.MatchString(value) {
		return "", &bquery.FormatError{Field: "transaction hash", Value: value}
	}
	return value, nil
}

// IndexedTx normalizes one transaction search result.
func IndexedTx(item types.TxSearchItem) (types.IndexedTx, error) {
	height, err := Uint("height", item.Height)
	if err != nil {
		return types.IndexedTx{}, err
	}
	hash, err := Hash(item.TxHash)
	if err != nil {
		return types.IndexedTx{}, err
	}
	wanted, err := optionalUint("gas_wanted", item.GasWanted)
	if err != nil {
		return types.IndexedTx{}, err
	}
	used, err := optionalUint("gas_used", item.GasUsed)
	if err != nil {
		return types.IndexedTx{}, err
	}

	var logs []types.Log
	switch {
	case len(item.Logs) > 0:
		logs, err = Logs(item.Logs)
	case strings.HasPrefix(strings.TrimSpace(item.RawLog), "["):
		logs, err = LogsFromJSON(item.RawLog)
	default:
		logs = []types.Log{}
	}
	if err != nil {
		return types.IndexedTx{}, err
	}

	var code uint32
	if item.Code != nil {
		code = *item.Code
	}

	return types.IndexedTx{
		Height:    height,
		Hash:      hash,
		Code:      code,
		RawLog:    item.RawLog,
		Logs:      logs,
		Tx:        item.Tx,
		GasWanted: wanted,
		GasUsed:   used,
		Timestamp: item.Timestamp,
	}, nil
}

// Logs validates structured per-message logs.
func Logs(wire []types.WireLog) ([]types.Log, error) {
	out := make([]types.Log, 0, len(wire))
	for _, w := range wire {
		if err := checkEvents(w.Events); err != nil {
			return nil, err
		}
		out = append(out, types.Log{MsgIndex: w.MsgIndex, Log: w.Log, Events: w.Events})
	}
	return out, nil
}

type jsonLog struct {
	MsgIndex uint32      `json:"msg_index"`
	Log      string      `json:"log"`
	Events   []jsonEvent `json:"events"`
}

type jsonEvent struct {
	Type       string          `json:"type"`
	Attributes []jsonAttribute `json:"attributes"`
}

type jsonAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LogsFromJSON parses logs rendered as a JSON array in a raw log, the
// form older nodes use.
func LogsFromJSON(raw string) ([]types.Log, error) {
	var parsed []jsonLog
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &bquery.FormatError{Field: "raw log", Value: raw, Err: err}
	}
	wire := make([]types.WireLog, 0, len(parsed))
	for _, l := range parsed {
		events := make([]types.Event, 0, len(l.Events))
		for _, ev := range l.Events {
			attrs := make([]types.EventAttribute, 0, len(ev.Attributes))
			for _, a := range ev.Attributes {
				attrs = append(attrs, types.EventAttribute{Key: a.Key, Value: a.Value})
			}
			events = append(events, types.Event{Kind: ev.Type, Attributes: attrs})
		}
		wire = append(wire, types.WireLog{MsgIndex: l.MsgIndex, Log: l.Log, Events: events})
	}
	return Logs(wire)
}

func checkEvents(events []types.Event) error {
	for _, ev := range events {
		if ev.Kind == "" {
			return &bquery.FormatError{Field: "event", Value: "", Err: errEventKind}
		}
		for _, a := range ev.Attributes {
			if a.Key == "" {
				return &bquery.FormatError{Field: "event attribute", Value: ev.Kind, Err: errAttrKey}
			}
		}
	}
	return nil
}

// Account projects a stored account record. An empty address means
// the account does not exist and yields nil.
func Account(rec types.BaseAccount) *types.Account {
	if rec.Address == "" {
		return nil
	}
	return &types.Account{
		Address:       rec.Address,
		PubKey:        rec.PubKey,
		AccountNumber: rec.AccountNumber,
		Sequence:      rec.Sequence,
	}
}

// Coin validates a coin: the denomination is non-empty and the amount
// is an unsigned 256-bit decimal integer. The amount is returned in
// canonical form (no leading zeros).
func Coin(c types.Coin) (types.Coin, error) {
	if c.Denom == "" {
		return types.Coin{}, &bquery.FormatError{Field: "denom", Value: c.Denom, Err: errEmptyDenom}
	}
	if c.Amount == "" || strings.HasPrefix(c.Amount, "+") {
		return types.Coin{}, &bquery.FormatError{Field: "amount", Value: c.Amount}
	}
	amount, err := uint256.FromDecimal(c.Amount)
	if err != nil {
		return types.Coin{}, &bquery.FormatError{Field: "amount", Value: c.Amount, Err: err}
	}
	return types.Coin{Denom: c.Denom, Amount: amount.Dec()}, nil
}

// Coins validates every coin in cs.
func Coins(cs []types.Coin) ([]types.Coin, error) {
	out := make([]types.Coin, 0, len(cs))
	for _, c := range cs {
		coin, err := Coin(c)
		if err != nil {
			return nil, err
		}
		out = append(out, coin)
	}
	return out, nil
}

// Balance normalizes a decoded balance record. A record with an empty
// denomination stands for "no balance" and yields nil.
func Balance(c types.Coin) (*types.Coin, error) {
	if c.Denom == "" {
		return nil, nil
	}
	coin, err := Coin(c)
	if err != nil {
		return nil, err
	}
	return &coin, nil
}

// BroadcastResult classifies the node's reply to a submitted
// transaction. A present, non-zero code is a failure; anything else
// is a success.
func BroadcastResult(resp types.BroadcastResponse) (types.BroadcastResult, error) {
	hash, err := Hash(resp.TxHash)
	if err != nil {
		return nil, err
	}

	if resp.Code != nil && *resp.Code != 0 {
		var height uint64
		if resp.Height != "" {
			if height, err = Uint("height", resp.Height); err != nil {
				return nil, err
			}
		}
		return types.BroadcastFailure{
			Hash:   hash,
			Height: height,
			Code:   *resp.Code,
			RawLog: resp.RawLog,
		}, nil
	}

	logs, err := Logs(resp.Logs)
	if err != nil {
		return nil, err
	}
	var data []byte
	if resp.Data != "" {
		if data, err = hex.DecodeString(resp.Data); err != nil {
			return nil, &bquery.FormatError{Field: "data", Value: resp.Data, Err: err}
		}
	}
	return types.BroadcastSuccess{
		Logs:   logs,
		RawLog: resp.RawLog,
		Hash:   hash,
		Data:   data,
	}, nil
}

// Block normalizes a block response.
func Block(resp types.BlockResponse) (types.Block, error) {
	height, err := Uint("block height", resp.Header.Height)
	if err != nil {
		return types.Block{}, err
	}
	return types.Block{
		ID: resp.BlockID,
		Header: types.BlockHeader{
			Version: types.BlockVersion{Block: resp.Header.VersionBlock, App: resp.Header.VersionApp},
			Height:  height,
			ChainID: resp.Header.ChainID,
			Time:    resp.Header.Time,
		},
		Txs: resp.Txs,
	}, nil
}
