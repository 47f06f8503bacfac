package curate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collate gathers the accepted records from outcomes, keeping discovery order.
func Collate(name string, outcomes []Outcome) Dataset {
	ds := Dataset{Name: name, Records: make([]Record, 0, len(outcomes))}
	for _, o := range outcomes {
		if o.Accepted() {
			ds.Records = append(ds.Records, o.Record)
		}
	}
	return ds
}

// EncodeCombined renders ds as a JSON array of the records' original bytes,
// indented by two spaces. Key order and literals are left as read, so the
// same records always encode to the same bytes.
func EncodeCombined(ds Dataset) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range ds.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		if err := json.Indent(&buf, bytes.TrimSpace(r.Raw), "  ", "  "); err != nil {
			return nil, fmt.Errorf("curate: encode record %q: %w", r.ID, err)
		}
	}
	if len(ds.Records) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}
