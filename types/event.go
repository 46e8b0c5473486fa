package types

// EventAttribute is a single key-value tag within an event.
type EventAttribute struct {
	Key   string `cramberry:"1"`
	Value string `cramberry:"2"`
	Index bool   `cramberry:"3"` // Whether indexers should pick this up.
}

// Event is an application-emitted event.
type Event struct {
	Kind       string           `cramberry:"1"`
	Attributes []EventAttribute `cramberry:"2"`
}

// WireLog is the per-message execution log as reported by the node.
type WireLog struct {
	MsgIndex uint32  `cramberry:"1"`
	Log      string  `cramberry:"2"`
	Events   []Event `cramberry:"3"`
}

// Log is the validated, caller-facing form of a WireLog.
type Log struct {
	MsgIndex uint32
	Log      string
	Events   []Event
}

// Attribute returns the value of the first attribute with the given
// key in the first event of the given kind.
func (l Log) Attribute(kind, key string) (string, bool) {
	for _, ev := range l.Events {
		if ev.Kind != kind {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key == key {
				return attr.Value, true
			}
		}
	}
	return "", false
}
