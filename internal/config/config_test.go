package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsoncollate/internal/analyze"
	"jsoncollate/internal/curate"
)

func testdataPath(name string) string {
	_, f, _, _ := runtime.Caller(0)
	dir := filepath.Dir(f)
	return filepath.Join(dir, "testdata", name)
}

func TestLoadFromPath_YAML(t *testing.T) {
	c, err := LoadFromPath(testdataPath("config.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if c.InputDir != "./tickets" || c.Output != "out/combined.json" {
		t.Errorf("paths: got %+v", c)
	}
	if c.Report != DefaultReport || c.LogFile != DefaultLogFile {
		t.Errorf("unset fields should keep defaults: got report=%q log=%q", c.Report, c.LogFile)
	}
	wantFields := []curate.FieldSpec{
		{Name: "id", Type: curate.TypeInteger},
		{Name: "created_at", Type: curate.TypeString},
		{Name: "tags", Type: curate.TypeArray, Requirement: curate.Optional},
	}
	if diff := cmp.Diff(wantFields, c.Schema.Fields); diff != "" {
		t.Errorf("schema mismatch:\n%s", diff)
	}
	wantAnalysis := analyze.Options{
		Numeric:     []string{"satisfaction.score"},
		Categorical: []analyze.Dimension{
			{Field: "tags", Label: "Tag"},
			{Field: "channel"},
			{Field: "custom_fields", Label: "Program Area", Key: "id", Match: "38830788"},
		},
		Dates:       []analyze.DateDimension{{Field: "created_at", Layouts: []string{"2006-01-02T15:04:05.999999999Z07:00"}}},
	}
	if diff := cmp.Diff(wantAnalysis, c.Analysis); diff != "" {
		t.Errorf("analysis mismatch:\n%s", diff)
	}
	if errs := c.Validate(); len(errs) != 0 {
		t.Errorf("Validate: %v", errs)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	c, err := LoadFromPath(testdataPath("config.json"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if c.Report != "stats.xlsx" || c.InputDir != DefaultInputDir {
		t.Errorf("got %+v", c)
	}
	if len(c.Schema.Fields) != 2 || c.Schema.Fields[1].IsRequired() {
		t.Errorf("schema: got %+v", c.Schema)
	}
}

func TestLoad_DetectJSON(t *testing.T) {
	c, err := Load([]byte(`{"input_dir":"in"}`), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InputDir != "in" {
		t.Errorf("InputDir = %q, want in", c.InputDir)
	}
}

func TestLoad_DetectYAML(t *testing.T) {
	c, err := Load([]byte("input_dir: in\n"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InputDir != "in" {
		t.Errorf("InputDir = %q, want in", c.InputDir)
	}
}

func TestLoad_EmptyKeepsDefaults(t *testing.T) {
	c, err := Load(nil, ".yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), *c); diff != "" {
		t.Errorf("empty config mismatch:\n%s", diff)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	if _, err := Load([]byte("inputdir: typo\n"), ".yaml"); err == nil {
		t.Error("expected error for unknown yaml key")
	}
	if _, err := Load([]byte(`{"inputdir":"typo"}`), ".json"); err == nil {
		t.Error("expected error for unknown json key")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Report = c.Output
	c.LogLevel = "chatty"
	c.LogFormat = "xml"
	c.Schema.Fields = []curate.FieldSpec{{Name: "id", Type: "uuid"}}

	errs := c.Validate()
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{"must be different", ".xlsx", "chatty", "log_format", "unknown type"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in errors:\n%s", want, joined)
		}
	}
	if errs := Default().Validate(); len(errs) != 0 {
		t.Errorf("Default().Validate() = %v", errs)
	}
}

func TestValidate_OutputsMustNotCollide(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"output is log", func(c *Config) { c.LogFile = "./" + c.Output }, "output and log_file"},
		{"report is log", func(c *Config) { c.LogFile = c.Report }, "report and log_file"},
		{"output is report", func(c *Config) { c.Output = "stats.xlsx"; c.Report = "stats.xlsx" }, "output and report"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.edit(&c)
			errs := c.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate returned %d errors, want 1: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tc.want) {
				t.Errorf("error = %q, want it to mention %q", errs[0], tc.want)
			}
		})
	}

	c := Default()
	c.LogFile = ""
	if errs := c.Validate(); len(errs) != 0 {
		t.Errorf("console-only logging should validate, got %v", errs)
	}
}
