// Package results files benchmark records into a results tree laid out as
// <root>/<benchmark>/<build>/<benchmark>-<commit>.jsonl.
package results

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/benchharness/benchjson/internal/fileutil"
	"github.com/benchharness/benchjson/internal/jsonl"
)

// UnknownCommit names files for records that carry no commit hash.
const UnknownCommit = "unknown"

var (
	ErrEmptyInput    = errors.New("empty input")
	ErrNoRecords     = errors.New("no valid JSON found in input")
	ErrBenchmarkName = errors.New("benchmark name is required")
	ErrBuildType     = errors.New(`build type must be "release" or "debug"`)
)

// BuildTypes are the accepted build types.
var BuildTypes = []string{"release", "debug"}

// LineError reports a JSON Lines input line that does not parse.
type LineError struct {
	Line    int
	Content string
	Err     error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("parsing JSON at line %d: %v (line content: %s)", e.Line, e.Err, e.Content)
}

func (e *LineError) Unwrap() error { return e.Err }

// ParseInput splits data into canonical records.
//
// data is first read as a single JSON document: an array yields its elements,
// any other value is one record. Otherwise data is read as JSON Lines, where
// blank lines are skipped and every other line must be valid JSON.
func ParseInput(data []byte) ([][]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	if jsonl.Validate(trimmed) == nil {
		var records [][]byte
		if jsonl.Kind(trimmed) == jsonl.KindArray {
			elements, err := jsonl.Elements(trimmed)
			if err != nil {
				return nil, err
			}
			records = elements
		} else {
			record, err := jsonl.CompactValue(trimmed)
			if err != nil {
				return nil, err
			}
			records = [][]byte{record}
		}
		if len(records) == 0 {
			return nil, ErrNoRecords
		}
		return records, nil
	}

	var records [][]byte
	for i, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		record, err := jsonl.CompactValue([]byte(line))
		if err != nil {
			return nil, &LineError{Line: i + 1, Content: line, Err: err}
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// CommitHash returns the first non-empty _metadata.git_info.commit_hash_short
// among records, or UnknownCommit.
func CommitHash(records [][]byte) string {
	for _, record := range records {
		hash, err := jsonparser.GetString(record, "_metadata", "git_info", "commit_hash_short")
		if err == nil && hash != "" {
			return hash
		}
	}
	return UnknownCommit
}

// Outcome describes where records were filed.
type Outcome struct {
	Path     string
	Commit   string
	Appended bool
	Records  int
}

// Filer writes records into a results tree.
type Filer struct {
	fs     afero.Fs
	root   string
	logger *log.Logger
}

func NewFiler(fs afero.Fs, root string, logger *log.Logger) *Filer {
	if logger == nil {
		logger = log.Default()
	}
	return &Filer{fs: fs, root: root, logger: logger}
}

// Path returns the file that records for the given benchmark, build type and
// commit are filed in.
func (f *Filer) Path(benchmark, build, commit string) string {
	name := fileutil.SanitizeFilename(benchmark)
	return filepath.Join(f.root, name, build, fmt.Sprintf("%s-%s.jsonl", name, fileutil.SanitizeFilename(commit)))
}

// File appends records to the file for their commit, creating it and its
// directories when needed.
func (f *Filer) File(benchmark, build string, records [][]byte) (Outcome, error) {
	if fileutil.SanitizeFilename(benchmark) == "" {
		return Outcome{}, ErrBenchmarkName
	}
	if !slices.Contains(BuildTypes, build) {
		return Outcome{}, fmt.Errorf("%w, got %q", ErrBuildType, build)
	}
	if len(records) == 0 {
		return Outcome{}, ErrNoRecords
	}

	commit := CommitHash(records)
	if commit == UnknownCommit {
		f.logger.Warn("could not find git hash in the benchmark results", "records", len(records))
	}

	path := f.Path(benchmark, build, commit)
	if err := f.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Outcome{}, fmt.Errorf("create results directory: %w", err)
	}

	exists, err := fileutil.FileExists(f.fs, path)
	if err != nil {
		return Outcome{}, fmt.Errorf("check results file %s: %w", path, err)
	}

	var buf bytes.Buffer
	if exists {
		f.logger.Info("results file exists, appending", "path", path)
		terminated, err := fileutil.EndsWithNewline(f.fs, path)
		if err != nil {
			return Outcome{}, fmt.Errorf("read results file %s: %w", path, err)
		}
		if !terminated {
			buf.WriteByte('\n')
		}
	} else {
		f.logger.Info("creating results file", "path", path)
	}
	for _, record := range records {
		buf.Write(record)
		buf.WriteByte('\n')
	}

	file, err := f.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return Outcome{}, fmt.Errorf("open results file %s: %w", path, err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return Outcome{}, fmt.Errorf("write results file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return Outcome{}, fmt.Errorf("close results file %s: %w", path, err)
	}

	return Outcome{
		Path:     path,
		Commit:   commit,
		Appended: exists,
		Records:  len(records),
	}, nil
}
