package devnode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blockberries/bquery/types"
)

const defaultSearchLimit = 30

// indexedTx is a delivered transaction kept for search.
type indexedTx struct {
	height    uint64
	hash      string
	raw       types.Tx
	outcome   txOutcome
	timestamp string
}

func (t indexedTx) item() types.TxSearchItem {
	item := types.TxSearchItem{
		Height:    strconv.FormatUint(t.height, 10),
		TxHash:    t.hash,
		RawLog:    t.outcome.rawLog,
		Logs:      t.outcome.logs,
		Tx:        t.raw,
		GasWanted: strconv.FormatUint(t.outcome.gasWanted, 10),
		GasUsed:   strconv.FormatUint(t.outcome.gasUsed, 10),
		Timestamp: t.timestamp,
	}
	if t.outcome.code != CodeOK {
		code := t.outcome.code
		item.Code = &code
	}
	return item
}

// matches reports whether t satisfies every condition.
func (t indexedTx) matches(conds []types.TagCondition) (bool, error) {
	for _, c := range conds {
		ok, err := t.matchOne(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (t indexedTx) matchOne(c types.TagCondition) (bool, error) {
	switch c.Key {
	case "tx.hash":
		return strings.EqualFold(t.hash, c.Value), nil
	case "tx.height", "tx.minheight", "tx.maxheight":
		h, err := strconv.ParseUint(c.Value, 10, 64)
		if err != nil {
			return false, fmt.Errorf("invalid %s %q", c.Key, c.Value)
		}
		switch c.Key {
		case "tx.height":
			return t.height == h, nil
		case "tx.minheight":
			return t.height >= h, nil
		default:
			return t.height <= h, nil
		}
	}

	kind, key, ok := strings.Cut(c.Key, ".")
	if !ok {
		return false, fmt.Errorf("invalid search key %q", c.Key)
	}
	for _, l := range t.outcome.logs {
		for _, ev := range l.Events {
			if ev.Kind != kind {
				continue
			}
			for _, a := range ev.Attributes {
				if a.Key == key && a.Value == c.Value {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// search runs req against the index and returns the requested page.
func search(index []indexedTx, req types.TxSearchRequest) (types.TxSearchResponse, error) {
	var hits []indexedTx
	for _, t := range index {
		ok, err := t.matches(req.Conditions)
		if err != nil {
			return types.TxSearchResponse{}, err
		}
		if ok {
			hits = append(hits, t)
		}
	}

	limit := int(req.Limit)
	if limit == 0 {
		limit = defaultSearchLimit
	}
	page := int(req.Page)
	if page == 0 {
		page = 1
	}
	pageTotal := (len(hits) + limit - 1) / limit
	if pageTotal == 0 {
		pageTotal = 1
	}

	start := (page - 1) * limit
	if start > len(hits) {
		start = len(hits)
	}
	end := start + limit
	if end > len(hits) {
		end = len(hits)
	}

	items := make([]types.TxSearchItem, 0, end-start)
	for _, t := range hits[start:end] {
		items = append(items, t.item())
	}
	return types.TxSearchResponse{
		TotalCount: strconv.Itoa(len(hits)),
		Count:      strconv.Itoa(len(items)),
		PageNumber: strconv.Itoa(page),
		PageTotal:  strconv.Itoa(pageTotal),
		Limit:      strconv.Itoa(limit),
		Txs:        items,
	}, nil
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

// renderLogs produces the JSON raw log of a successful transaction.
func renderLogs(logs []types.WireLog) string {
	out := make([]jsonLog, 0, len(logs))
	for _, l := range logs {
		jl := jsonLog{MsgIndex: l.MsgIndex, Log: l.Log, Events: make([]jsonEvent, 0, len(l.Events))}
		for _, ev := range l.Events {
			je := jsonEvent{Type: ev.Kind, Attributes: make([]jsonAttribute, 0, len(ev.Attributes))}
			for _, a := range ev.Attributes {
				je.Attributes = append(je.Attributes, jsonAttribute{Key: a.Key, Value: a.Value})
			}
			jl.Events = append(jl.Events, je)
		}
		out = append(out, jl)
	}
	data, _ := json.Marshal(out) // only strings and integers
	return string(data)
}
