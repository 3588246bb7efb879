package trace

import (
	"strconv"
	"strings"
)

// Default field values applied when a column is missing or fails to coerce.
// The TTL default matches the simulator's configured maximum.
const (
	DefaultTTL        = 6
	DefaultPathLength = 1
)

// Record is one raw trace row with fields still in string form. Loaders map
// whatever column order the file uses onto these named fields; empty strings
// mean the column was absent.
type Record struct {
	Time        string
	Event       string
	Sender      string
	Receiver    string
	Originator  string
	TTL         string
	PathLength  string
	RSSI        string
	MessageType string
}

// ParseOptions tunes per-field defaults during parsing.
type ParseOptions struct {
	// DefaultTTL is used when the ttl column is missing or malformed.
	// Zero means DefaultTTL.
	DefaultTTL int
}

func (o ParseOptions) ttl() int {
	if o.DefaultTTL <= 0 {
		return DefaultTTL
	}
	return o.DefaultTTL
}

// ParseResult carries the parsed events plus the decoded STATS rows, which
// are terminal summaries rather than timeline events.
type ParseResult struct {
	Events  []Event
	Stats   []Stats
	Skipped int // rows dropped as unknown or malformed
}

// Parse converts raw records into typed events, preserving record order as a
// stable tie-break for equal timestamps. Parsing is best-effort: unknown or
// malformed rows are skipped and counted, never fatal, because traces may be
// hand-edited or truncated. Numeric fields that fail to coerce fall back to
// per-field defaults.
func Parse(records []Record, opts ParseOptions) ParseResult {
	var res ParseResult

	for i, rec := range records {
		switch strings.ToUpper(strings.TrimSpace(rec.Event)) {
		case "TOPOLOGY":
			ev, ok := parseTopology(rec)
			if !ok {
				res.Skipped++
				continue
			}
			ev.Seq = i
			res.Events = append(res.Events, ev)

		case "SEND":
			ev, ok := parseSend(rec, opts)
			if !ok {
				res.Skipped++
				continue
			}
			ev.Seq = i
			res.Events = append(res.Events, ev)

		case "RECV":
			ev, ok := parseRecv(rec, opts)
			if !ok {
				res.Skipped++
				continue
			}
			ev.Seq = i
			res.Events = append(res.Events, ev)

		case "STATS":
			st, ok := parseStats(rec)
			if !ok {
				res.Skipped++
				continue
			}
			res.Stats = append(res.Stats, st)

		default:
			res.Skipped++
		}
	}

	return res
}

func parseTopology(rec Record) (Event, bool) {
	a, okA := parseNode(rec.Sender)
	b, okB := parseNode(rec.Receiver)
	if !okA || !okB {
		return Event{}, false
	}
	return Event{Kind: KindTopology, Sender: a, Receiver: b}, true
}

func parseSend(rec Record, opts ParseOptions) (Event, bool) {
	t, okT := parseTime(rec.Time)
	sender, okS := parseNode(rec.Sender)
	if !okT || !okS {
		return Event{}, false
	}

	// A send with no originator column is the node's own discovery.
	orig, ok := parseNode(rec.Originator)
	if !ok {
		orig = sender
	}

	return Event{
		Kind:       KindSend,
		Time:       t,
		Sender:     sender,
		Originator: orig,
		TTL:        parseIntDefault(rec.TTL, opts.ttl()),
		PathLength: parseIntDefault(rec.PathLength, DefaultPathLength),
		RSSI:       parseIntDefault(rec.RSSI, 0),
	}, true
}

func parseRecv(rec Record, opts ParseOptions) (Event, bool) {
	t, okT := parseTime(rec.Time)
	recv, okR := parseNode(rec.Receiver)
	if !okT || !okR {
		return Event{}, false
	}

	orig, _ := parseNode(rec.Originator)

	return Event{
		Kind:       KindRecv,
		Time:       t,
		Receiver:   recv,
		Originator: orig,
		TTL:        parseIntDefault(rec.TTL, opts.ttl()),
		PathLength: parseIntDefault(rec.PathLength, DefaultPathLength),
		RSSI:       parseIntDefault(rec.RSSI, 0),
	}, true
}

// parseStats decodes a STATS row. These rows repurpose the regular columns
// (a quirk of the simulator's trace writer, preserved for compatibility):
// sender_id is the node id, receiver_id the sent count, originator_id the
// received count, ttl the forwarded count, path_length the dropped count.
func parseStats(rec Record) (Stats, bool) {
	node, ok := parseNode(rec.Sender)
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Node:      node,
		Sent:      parseIntDefault(rec.Receiver, 0),
		Received:  parseIntDefault(rec.Originator, 0),
		Forwarded: parseIntDefault(rec.TTL, 0),
		Dropped:   parseIntDefault(rec.PathLength, 0),
	}, true
}

func parseNode(s string) (NodeID, bool) {
	n, ok := parseInt(s)
	if !ok || n < 0 {
		return 0, false
	}
	return NodeID(n), true
}

func parseTime(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Trace writers emit whole milliseconds, but hand-edited traces sometimes
	// carry a decimal point.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(f), true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseIntDefault(s string, def int) int {
	n, ok := parseInt(s)
	if !ok || n < 0 {
		return def
	}
	return n
}
