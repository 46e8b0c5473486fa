package devnode

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/types"
)

// Result codes reported for failed transactions.
const (
	CodeOK                uint32 = 0
	CodeTxDecode          uint32 = 2
	CodeInvalidAddress    uint32 = 7
	CodeUnknownRequest    uint32 = 6
	CodeInsufficientFunds uint32 = 5
	CodeInvalidCoins      uint32 = 10
)

const gasPerMsg = 12000

// txOutcome is the result of executing one transaction.
type txOutcome struct {
	code      uint32
	rawLog    string
	logs      []types.WireLog
	gasWanted uint64
	gasUsed   uint64
}

func failed(code uint32, format string, args ...any) txOutcome {
	return txOutcome{code: code, rawLog: fmt.Sprintf(format, args...)}
}

// executeTx applies tx to s. On failure s may be partially modified
// and must be discarded by the caller.
func executeTx(s *state, prefix string, raw types.Tx) txOutcome {
	var tx types.StdTx
	if err := codec.Unmarshal(raw, &tx); err != nil {
		return failed(CodeTxDecode, "tx parse error: %v", err)
	}
	if len(tx.Msgs) == 0 {
		return failed(CodeUnknownRequest, "transaction contains no messages")
	}

	out := txOutcome{gasWanted: tx.Fee.Gas}
	var signer []byte
	for i, msg := range tx.Msgs {
		if msg.TypeURL != types.MsgSendTypeURL {
			return failed(CodeUnknownRequest, "unrecognized message type: %s", msg.TypeURL)
		}
		var send types.MsgSend
		if err := codec.Unmarshal(msg.Value, &send); err != nil {
			return failed(CodeTxDecode, "msg %d parse error: %v", i, err)
		}
		from, events, res := executeSend(s, prefix, send)
		if res.code != CodeOK {
			return res
		}
		if signer == nil {
			signer = from
		}
		out.logs = append(out.logs, types.WireLog{MsgIndex: uint32(i), Events: events})
		out.gasUsed += gasPerMsg
	}

	s.accounts[string(signer)].Sequence++
	out.rawLog = renderLogs(out.logs)
	return out
}

func executeSend(s *state, prefix string, msg types.MsgSend) ([]byte, []types.Event, txOutcome) {
	from, err := address.Decode(msg.FromAddress, prefix)
	if err != nil {
		return nil, nil, failed(CodeInvalidAddress, "invalid sender: %v", err)
	}
	to, err := address.Decode(msg.ToAddress, prefix)
	if err != nil {
		return nil, nil, failed(CodeInvalidAddress, "invalid recipient: %v", err)
	}
	if _, ok := s.accounts[string(from)]; !ok {
		return nil, nil, failed(CodeUnknownRequest, "account %s does not exist", msg.FromAddress)
	}
	if len(msg.Amount) == 0 {
		return nil, nil, failed(CodeInvalidCoins, "no coins to send")
	}

	amounts := make([]string, 0, len(msg.Amount))
	for _, c := range msg.Amount {
		amount, err := uint256.FromDecimal(c.Amount)
		if err != nil || c.Denom == "" || amount.IsZero() {
			return nil, nil, failed(CodeInvalidCoins, "invalid coin %s%s", c.Amount, c.Denom)
		}
		have := s.balance(from, c.Denom)
		if have.Lt(amount) {
			return nil, nil, failed(CodeInsufficientFunds, "insufficient account funds; %s%s < %s%s",
				have.Dec(), c.Denom, amount.Dec(), c.Denom)
		}
		s.setBalance(from, c.Denom, new(uint256.Int).Sub(have, amount))

		received, overflow := new(uint256.Int).AddOverflow(s.balance(to, c.Denom), amount)
		if overflow {
			return nil, nil, failed(CodeInvalidCoins, "balance overflow for %s", c.Denom)
		}
		s.setBalance(to, c.Denom, received)
		amounts = append(amounts, amount.Dec()+c.Denom)
	}
	s.ensureAccount(to, msg.ToAddress)

	events := []types.Event{
		{Kind: "message", Attributes: []types.EventAttribute{
			{Key: "action", Value: "send", Index: true},
			{Key: "sender", Value: msg.FromAddress, Index: true},
			{Key: "module", Value: "bank", Index: true},
		}},
		{Kind: "transfer", Attributes: []types.EventAttribute{
			{Key: "recipient", Value: msg.ToAddress, Index: true},
			{Key: "sender", Value: msg.FromAddress, Index: true},
			{Key: "amount", Value: strings.Join(amounts, ",")},
		}},
	}
	return from, events, txOutcome{}
}
