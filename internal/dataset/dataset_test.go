package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestLoadFile_OrderAndFields(t *testing.T) {
	path := writeDataset(t,
		`{"text": "first article body", "summary": "first ref"}`,
		`{"text": "second article body"}`,
		``,
		`{"text": "third article body", "summary": "third ref"}`,
	)
	samples, err := LoadFile(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0].Text != "first article body" || samples[0].ReferenceSummary != "first ref" {
		t.Fatalf("sample 0: %+v", samples[0])
	}
	if samples[1].ReferenceSummary != "" {
		t.Fatalf("summary is optional: %+v", samples[1])
	}
	if samples[2].Text != "third article body" {
		t.Fatalf("blank lines must not shift order: %+v", samples[2])
	}
}

func TestLoadFile_Limit(t *testing.T) {
	path := writeDataset(t,
		`{"text": "one"}`,
		`{"text": "two"}`,
		`{"text": "three"}`,
	)
	samples, err := LoadFile(path, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(samples) != 2 || samples[1].Text != "two" {
		t.Fatalf("limit must keep the prefix: %+v", samples)
	}
}

func TestLoadFile_MalformedLine(t *testing.T) {
	path := writeDataset(t,
		`{"text": "fine"}`,
		`{not json`,
	)
	_, err := LoadFile(path, 0)
	if err == nil || !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("error must carry the line number: %v", err)
	}
}

func TestLoadFile_MissingText(t *testing.T) {
	path := writeDataset(t,
		`{"summary": "reference only"}`,
	)
	_, err := LoadFile(path, 0)
	if err == nil || !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.jsonl"), 0)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if IsParseError(err) {
		t.Fatalf("a missing file is not a parse error: %v", err)
	}
}

func TestFixtures(t *testing.T) {
	all := Fixtures(0)
	if len(all) == 0 {
		t.Fatalf("built-in fixtures must not be empty")
	}
	for i, s := range all {
		if strings.TrimSpace(s.Text) == "" {
			t.Fatalf("fixture %d has no text", i)
		}
	}
	if got := Fixtures(1); len(got) != 1 || got[0].Text != all[0].Text {
		t.Fatalf("limit must keep the prefix: %+v", got)
	}
}
