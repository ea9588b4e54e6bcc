package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter(FormatJSON, "", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	defer f.Close()

	if f.Format() != FormatJSON {
		t.Errorf("format = %q, want json", f.Format())
	}
	if !f.Colored() {
		t.Error("colored should be kept for stdout")
	}
	if f.file != nil {
		t.Error("file should be nil for stdout")
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "output.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("colored should be disabled for file output")
	}

	if err := f.Output(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"a": 1`) {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/dir/out.txt", false)
	if err == nil {
		t.Error("NewFormatter() should fail for an unwritable path")
	}
}

func sampleTable() *Table {
	return NewTable("Scores",
		[]string{"Commit", "Score"},
		[][]string{{"abc1234", "7.5"}, {"def5678", "4.0"}},
		[]string{"Average", "5.75"},
		nil,
	)
}

func TestTable_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatText, &buf, false).Output(sampleTable()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Scores", "======", "abc1234", "7.5", "5.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output(sampleTable()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"## Scores", "| Commit | Score |", "| --- | --- |", "| abc1234 | 7.5 |", "| Average | 5.75 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_JSONWithoutData(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatJSON, &buf, false).Output(sampleTable()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	var rows []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(rows) != 2 || rows[0]["Commit"] != "abc1234" {
		t.Errorf("rows = %v", rows)
	}
}

func TestOutput_YAMLUsesJSONNames(t *testing.T) {
	type payload struct {
		CommitID string `json:"commit_id"`
		Score    float64 `json:"score"`
	}
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatYAML, &buf, false).Output(payload{"abc", 7.5}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got["commit_id"] != "abc" || got["score"] != 7.5 {
		t.Errorf("yaml = %v", got)
	}
}

func TestOutput_TOON(t *testing.T) {
	type payload struct {
		CommitID string `json:"commit_id" toon:"commit_id"`
	}
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatTOON, &buf, false).Output(payload{"abc"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.Contains(buf.String(), "commit_id") || !strings.Contains(buf.String(), "abc") {
		t.Errorf("toon output = %q", buf.String())
	}
}

func TestOutput_RawMarkdownIsFenced(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output([]int{1, 2}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "```json\n") || !strings.HasSuffix(out, "```\n") {
		t.Errorf("markdown raw output = %q", out)
	}
}

func TestMessages_Plain(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Success("done %d", 3)
	f.Warning("slow")
	f.Error("failed")

	want := "done 3\nWARNING: slow\nERROR: failed\n"
	if buf.String() != want {
		t.Errorf("messages = %q, want %q", buf.String(), want)
	}
}

func TestScoreColor(t *testing.T) {
	for _, s := range []float64{9, 7, 2} {
		if got := ScoreColor(s, "x"); !strings.Contains(got, "x") {
			t.Errorf("ScoreColor(%v) dropped the text: %q", s, got)
		}
	}
}
