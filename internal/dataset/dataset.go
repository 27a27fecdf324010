// Package dataset supplies ordered (text, reference summary) samples
// from a JSONL file or the built-in fixture set.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"sumbench/pkg/types"
)

// parseError reports a malformed dataset file with its line number.
type parseError struct {
	path string
	line int
	err  error
}

func (e parseError) Error() string {
	return fmt.Sprintf("dataset parse error: %s:%d: %v", e.path, e.line, e.err)
}
func (e parseError) Unwrap() error { return e.err }

func IsParseError(err error) bool {
	var e parseError
	return errors.As(err, &e)
}

// LoadFile reads JSONL samples in file order. Each non-blank line is an
// object with a "text" field and an optional "summary" field. limit > 0
// truncates the sequence.
func LoadFile(path string, limit int) ([]types.DatasetSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []types.DatasetSample
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var s types.DatasetSample
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, parseError{path: path, line: lineNo, err: err}
		}
		if strings.TrimSpace(s.Text) == "" {
			return nil, parseError{path: path, line: lineNo, err: fmt.Errorf("missing text field")}
		}
		samples = append(samples, s)
		if limit > 0 && len(samples) >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, parseError{path: path, line: lineNo, err: err}
	}
	return samples, nil
}

// Fixtures returns the built-in sample set used when no dataset file is
// given. limit > 0 truncates it.
func Fixtures(limit int) []types.DatasetSample {
	samples := builtinSamples()
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return samples
}
