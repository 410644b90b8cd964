package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadDataset reads a recorded dataset from a CSV file: a header row, then
// one row per tick of "timestampMs,ch0,ch1,ch2,ch3".
func LoadDataset(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q: %w", path, err)
	}
	defer f.Close()
	records, err := LoadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %q: %w", path, err)
	}
	return records, nil
}

// LoadRecords parses dataset rows from r. The first row is a header and
// is skipped. An empty or unparsable timestamp field marks the row as
// carrying no timestamp; sample fields must parse as numbers and are
// clamped to the 12-bit range the synthesized frames can carry.
func LoadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset has no sample rows")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != Channels+1 {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+2, Channels+1, len(row))
		}
		rec := Record{TimestampMs: -1}
		if ts := strings.TrimSpace(row[0]); ts != "" {
			if v, err := strconv.ParseInt(ts, 10, 64); err == nil && v >= 0 {
				rec.TimestampMs = v
			}
		}
		for ch := 0; ch < Channels; ch++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[ch+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad sample for channel %d: %w", i+2, ch, err)
			}
			rec.Samples[ch] = clampSample(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func clampSample(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0x0FFF {
		return 0x0FFF
	}
	return uint16(math.Round(v))
}
