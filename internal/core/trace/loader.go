package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names recognized in the CSV header. Mapping is by name, not
// position, so column order is irrelevant and extra columns are ignored.
const (
	colTime        = "time_ms"
	colEvent       = "event"
	colSender      = "sender_id"
	colReceiver    = "receiver_id"
	colOriginator  = "originator_id"
	colTTL         = "ttl"
	colPathLength  = "path_length"
	colRSSI        = "rssi"
	colMessageType = "message_type"
)

// Read reads raw records from CSV trace data. The first row must be a header
// naming at least the event column. Rows with a wrong field count are not an
// error; encoding/csv's variable-length mode is enabled because truncated
// traces routinely drop trailing empty columns.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := idx[colEvent]; !ok {
		return nil, fmt.Errorf("header has no %q column", colEvent)
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Best-effort: a single unparseable line does not kill the load.
			continue
		}

		records = append(records, Record{
			Time:        field(row, colTime),
			Event:       field(row, colEvent),
			Sender:      field(row, colSender),
			Receiver:    field(row, colReceiver),
			Originator:  field(row, colOriginator),
			TTL:         field(row, colTTL),
			PathLength:  field(row, colPathLength),
			RSSI:        field(row, colRSSI),
			MessageType: field(row, colMessageType),
		})
	}

	return records, nil
}

// ReadFile reads raw records from a CSV trace file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	return records, nil
}
