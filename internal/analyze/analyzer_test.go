package analyze

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsoncollate/internal/curate"
)

var idSchema = curate.Schema{Fields: []curate.FieldSpec{{Name: "id", Type: curate.TypeString}}}

// load writes files (name -> content) and loads them in name order.
func load(t *testing.T, files map[string]string) []curate.Outcome {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := curate.Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	outcomes, err := curate.NewLoader(idSchema, nil).LoadAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return outcomes
}

func TestRun_ScoreScenario(t *testing.T) {
	outcomes := load(t, map[string]string{
		"a.json":   `{"id":"a","score":10}`,
		"b.json":   `{"id":"b","score":20}`,
		"bad.json": `{"id":"c","score":`,
	})

	s := New(Options{Numeric: []string{"score"}}, nil).Run(outcomes)

	if s.Processed != 3 || s.Accepted != 2 || s.Rejected != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", s.Processed, s.Accepted, s.Rejected)
	}
	if got := s.RejectionCount(curate.ReasonParse); got != 1 {
		t.Errorf("parse_error count = %d, want 1", got)
	}
	score, ok := s.NumericField("score")
	if !ok {
		t.Fatal("score not analyzed")
	}
	want := NumericStats{Field: "score", Count: 2, Min: 10, Max: 20, Mean: 15, StdDev: 5, Sum: 30}
	if diff := cmp.Diff(want, score); diff != "" {
		t.Errorf("score stats mismatch:\n%s", diff)
	}
	if len(s.RejectedFiles) != 1 || filepath.Base(s.RejectedFiles[0].File) != "bad.json" {
		t.Errorf("RejectedFiles = %+v", s.RejectedFiles)
	}
}

func TestRun_AbsentValuesExcluded(t *testing.T) {
	outcomes := load(t, map[string]string{
		"1.json": `{"id":"a","score":10}`,
		"2.json": `{"id":"b","score":20}`,
		"3.json": `{"id":"c"}`,
		"4.json": `{"id":"d","score":null}`,
		"5.json": `{"id":"e","score":"n/a"}`,
	})

	score, _ := New(Options{Numeric: []string{"score"}}, nil).Run(outcomes).NumericField("score")
	if score.Count != 2 || score.Mean != 15 {
		t.Errorf("score = %+v, want count 2 mean 15", score)
	}
	if score.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", score.Skipped)
	}
}

func TestRun_CountsAddUp(t *testing.T) {
	outcomes := load(t, map[string]string{
		"a.json": `{"id":"a"}`,
		"b.json": `[1]`,
		"c.json": `{"name":"x"}`,
		"d.json": `{"id":5}`,
		"e.json": `nope`,
	})
	s := New(Options{}, nil).Run(outcomes)

	if s.Accepted+s.Rejected != s.Processed {
		t.Errorf("accepted %d + rejected %d != processed %d", s.Accepted, s.Rejected, s.Processed)
	}
	got := make(map[curate.Reason]int)
	for _, r := range s.Rejections {
		got[r.Reason] = r.Count
	}
	want := map[curate.Reason]int{
		curate.ReasonParse:        1,
		curate.ReasonUnreadable:   0,
		curate.ReasonNotObject:    1,
		curate.ReasonMissingField: 1,
		curate.ReasonWrongType:    1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rejection breakdown mismatch:\n%s", diff)
	}
}

func TestRun_NoValidRecords(t *testing.T) {
	outcomes := load(t, map[string]string{"bad.json": `{`})
	opts := Options{
		Numeric:     []string{"score"},
		Categorical: []Dimension{{Field: "segment"}},
		Dates:       []DateDimension{{Field: "created_at"}},
	}
	s := New(opts, nil).Run(outcomes)

	if !s.Empty() {
		t.Error("Empty() = false, want true")
	}
	score, ok := s.NumericField("score")
	if !ok || score.Count != 0 || score.Mean != 0 || math.IsNaN(score.StdDev) {
		t.Errorf("score = %+v, want zero stats", score)
	}
	if len(s.Tables) != 2 {
		t.Fatalf("len(Tables) = %d, want 2", len(s.Tables))
	}
	for _, tb := range s.Tables {
		if len(tb.Entries) != 0 || tb.Total != 0 {
			t.Errorf("table %s should be empty: %+v", tb.Field, tb)
		}
	}
}

func TestRun_CategoricalTable(t *testing.T) {
	outcomes := load(t, map[string]string{
		"1.json": `{"id":"1","segment":"retail","tags":["a","b"]}`,
		"2.json": `{"id":"2","segment":"retail","tags":["b"]}`,
		"3.json": `{"id":"3","segment":"corp","tags":[]}`,
		"4.json": `{"id":"4","segment":""}`,
		"5.json": `{"id":"5","segment":7}`,
	})
	opts := Options{Categorical: []Dimension{
		{Field: "segment"},
		{Field: "tags", Label: "Tag"},
	}}
	s := New(opts, nil).Run(outcomes)

	seg := s.Tables[0]
	if seg.Label != "Segment" || seg.Kind != KindCategorical {
		t.Errorf("segment table header = %q/%q", seg.Label, seg.Kind)
	}
	wantSeg := []Frequency{{"retail", 2}, {"7", 1}, {"corp", 1}}
	if diff := cmp.Diff(wantSeg, seg.Entries); diff != "" {
		t.Errorf("segment entries mismatch:\n%s", diff)
	}
	if seg.Total != 4 || seg.Missing != 1 {
		t.Errorf("segment total/missing = %d/%d, want 4/1", seg.Total, seg.Missing)
	}

	tags := s.Tables[1]
	wantTags := []Frequency{{"b", 2}, {"a", 1}}
	if diff := cmp.Diff(wantTags, tags.Entries); diff != "" {
		t.Errorf("tag entries mismatch:\n%s", diff)
	}
	if tags.Label != "Tag" || tags.Missing != 3 {
		t.Errorf("tags label/missing = %q/%d, want Tag/3", tags.Label, tags.Missing)
	}
}

func TestRun_DateTable(t *testing.T) {
	outcomes := load(t, map[string]string{
		"1.json": `{"id":"1","created_at":"2021-03-04T05:06:07.123Z"}`,
		"2.json": `{"id":"2","created_at":"2020-01-01T00:00:00.000+0000"}`,
		"3.json": `{"id":"3","created_at":"2021-12-31"}`,
		"4.json": `{"id":"4","created_at":"yesterday"}`,
		"5.json": `{"id":"5"}`,
	})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s := New(Options{Dates: []DateDimension{{Field: "created_at", Label: "Year"}}}, logger).Run(outcomes)

	want := []Frequency{{"2020", 1}, {"2021", 2}, {InvalidDate, 1}}
	if diff := cmp.Diff(want, s.Tables[0].Entries); diff != "" {
		t.Errorf("year entries mismatch:\n%s", diff)
	}
	if s.Tables[0].Missing != 1 {
		t.Errorf("Missing = %d, want 1", s.Tables[0].Missing)
	}
	if !strings.Contains(logs.String(), "invalid date format") {
		t.Errorf("expected a warning for the unparseable date:\n%s", logs.String())
	}
}

func TestRun_InfersNumericFields(t *testing.T) {
	outcomes := load(t, map[string]string{
		"1.json": `{"id":"1","score":1,"age":30,"mixed":1}`,
		"2.json": `{"id":"2","score":2,"age":null,"mixed":"x"}`,
	})
	s := New(Options{}, nil).Run(outcomes)

	var fields []string
	for _, n := range s.Numeric {
		fields = append(fields, n.Field)
	}
	if diff := cmp.Diff([]string{"age", "score"}, fields); diff != "" {
		t.Errorf("inferred fields mismatch:\n%s", diff)
	}
}

func TestRun_KeyedCategoricalTable(t *testing.T) {
	outcomes := load(t, map[string]string{
		"1.json": `{"id":"1","custom_fields":[{"id":100,"value":"health"},{"id":200,"value":"web"}]}`,
		"2.json": `{"id":"2","custom_fields":[{"id":200,"value":"phone"},{"id":100,"value":"health"}]}`,
		"3.json": `{"id":"3","custom_fields":[{"id":100,"value":null},{"id":200,"value":"web"}]}`,
		"4.json": `{"id":"4"}`,
		"5.json": `{"id":"5","custom_fields":[{"id":"100","value":"education"}]}`,
	})
	opts := Options{Categorical: []Dimension{
		{Field: "custom_fields", Label: "Program Area", Key: "id", Match: "100"},
		{Field: "custom_fields", Key: "id", Match: "200", Value: "value"},
	}}
	s := New(opts, nil).Run(outcomes)

	area := s.Tables[0]
	if diff := cmp.Diff([]Frequency{{"health", 2}, {"education", 1}}, area.Entries); diff != "" {
		t.Errorf("program area entries mismatch:\n%s", diff)
	}
	if area.Label != "Program Area" || area.Total != 3 || area.Missing != 2 {
		t.Errorf("program area label/total/missing = %q/%d/%d, want Program Area/3/2", area.Label, area.Total, area.Missing)
	}

	channel := s.Tables[1]
	if diff := cmp.Diff([]Frequency{{"web", 2}, {"phone", 1}}, channel.Entries); diff != "" {
		t.Errorf("channel entries mismatch:\n%s", diff)
	}
	if channel.Field != "custom_fields[id=200].value" {
		t.Errorf("channel field = %q", channel.Field)
	}
	if channel.Label != "Custom Fields 200" || channel.Missing != 2 {
		t.Errorf("channel label/missing = %q/%d, want Custom Fields 200/2", channel.Label, channel.Missing)
	}
}

func TestOptions_ValidateKeyedDimensions(t *testing.T) {
	valid := Options{Categorical: []Dimension{
		{Field: "custom_fields", Key: "id", Match: "100"},
		{Field: "custom_fields", Key: "id", Match: "200"},
	}}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("Validate = %v, want no errors", errs)
	}

	invalid := Options{Categorical: []Dimension{
		{Field: "custom_fields", Key: "id"},
		{Field: "segment", Match: "x"},
		{Field: "custom_fields", Key: "id", Match: "100"},
		{Field: "custom_fields", Key: "id", Match: "100", Value: "value"},
	}}
	if errs := invalid.Validate(); len(errs) != 3 {
		t.Errorf("Validate returned %d errors, want 3: %v", len(errs), errs)
	}
}

func TestOptions_Validate(t *testing.T) {
	o := Options{
		Numeric:     []string{"score", "score", ""},
		Categorical: []Dimension{{Field: "segment"}},
		Dates:       []DateDimension{{Field: "segment"}},
	}
	if errs := o.Validate(); len(errs) != 3 {
		t.Errorf("Validate returned %d errors, want 3: %v", len(errs), errs)
	}
}
