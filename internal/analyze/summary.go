package analyze

import "jsoncollate/internal/curate"

// NumericStats aggregates one numeric field over the records that carry it.
// Skipped counts records where the field held a non-numeric value.
type NumericStats struct {
	Field   string  `json:"field"`
	Count   int     `json:"count"`
	Skipped int     `json:"skipped,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Sum     float64 `json:"sum"`
}

// TableKind distinguishes categorical breakdowns from date histograms.
type TableKind string

const (
	KindCategorical TableKind = "categorical"
	KindDate        TableKind = "date"
)

// InvalidDate is the bucket for date values no layout could parse.
const InvalidDate = "(invalid)"

// Frequency is one distinct value and how often it occurred.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTable covers every distinct value observed for one field.
// Total is the sum of entry counts; array fields can make it exceed the
// record count. Missing counts records without a usable value.
type FrequencyTable struct {
	Field   string      `json:"field"`
	Label   string      `json:"label"`
	Kind    TableKind   `json:"kind"`
	Entries []Frequency `json:"entries"`
	Total   int         `json:"total"`
	Missing int         `json:"missing"`
}

// Rejection counts rejected files for one reason.
type Rejection struct {
	Reason curate.Reason `json:"reason"`
	Count  int           `json:"count"`
}

// RejectedFile locates one rejected input.
type RejectedFile struct {
	File   string        `json:"file"`
	Reason curate.Reason `json:"reason"`
	Detail string        `json:"detail"`
}

// Summary is the read-only result of one analysis run.
type Summary struct {
	Processed     int              `json:"processed"`
	Accepted      int              `json:"accepted"`
	Rejected      int              `json:"rejected"`
	Rejections    []Rejection      `json:"rejections"`
	RejectedFiles []RejectedFile   `json:"rejected_files,omitempty"`
	Numeric       []NumericStats   `json:"numeric"`
	Tables        []FrequencyTable `json:"tables"`
}

// Empty reports whether no record was accepted.
func (s Summary) Empty() bool { return s.Accepted == 0 }

// RejectionCount returns the number of files rejected for reason.
func (s Summary) RejectionCount(reason curate.Reason) int {
	for _, r := range s.Rejections {
		if r.Reason == reason {
			return r.Count
		}
	}
	return 0
}

// NumericField returns the stats for field, if it was analyzed.
func (s Summary) NumericField(field string) (NumericStats, bool) {
	for _, n := range s.Numeric {
		if n.Field == field {
			return n, true
		}
	}
	return NumericStats{}, false
}
