// Package enrich attaches run metadata to every record recovered from a
// benchmark's output.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/benchharness/benchjson/internal/extract"
	"github.com/benchharness/benchjson/internal/jsonl"
)

// MetadataKey is the member added to every record.
const MetadataKey = "_metadata"

// Stats summarizes an enrichment run.
type Stats struct {
	Records int
	Invalid int
	Skipped int
}

// Enricher wraps extracted values with a fixed metadata document.
type Enricher struct {
	metadata []byte
	logger   *log.Logger
}

// New returns an Enricher that attaches metadata, which must be valid JSON.
func New(metadata []byte, logger *log.Logger) (*Enricher, error) {
	canonical, err := jsonl.CompactValue(metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{metadata: canonical, logger: logger}, nil
}

// Record returns the enriched form of one line produced by the extractor.
//
// Objects gain a "_metadata" member, replacing an existing one in place.
// Arrays are wrapped as {"data": [...], "data_type": "array", "_metadata": ...}.
// A line that does not parse becomes an error record carrying the original
// text; the second return value is then false.
func (e *Enricher) Record(line []byte) ([]byte, bool) {
	var (
		obj *jsonl.Object
		err error
	)

	switch jsonl.Kind(line) {
	case jsonl.KindObject:
		obj, err = jsonl.ParseObject(line)
	case jsonl.KindArray:
		obj, err = e.wrapArray(line)
	default:
		err = jsonl.ErrNotContainer
	}
	if err != nil {
		e.logger.Warn("invalid JSON from filter", "line", extract.Preview(line), "error", err)
		return e.errorRecord(line, err), false
	}

	obj.SetRaw(MetadataKey, e.metadata)
	out, _ := obj.MarshalJSON()
	return out, true
}

func (e *Enricher) wrapArray(line []byte) (*jsonl.Object, error) {
	obj := jsonl.NewObject()
	if err := obj.Set("data", line); err != nil {
		return nil, err
	}
	obj.SetString("data_type", "array")
	return obj, nil
}

func (e *Enricher) errorRecord(line []byte, cause error) []byte {
	obj := jsonl.NewObject()
	obj.SetString("error", "invalid JSON from filter")
	obj.SetString("original_line", string(line))
	obj.SetString("json_error", cause.Error())
	obj.SetRaw(MetadataKey, e.metadata)
	out, _ := obj.MarshalJSON()
	return out
}

// Run extracts values from r and writes their enriched records to w, one per
// line, flushing after each. It stops when ctx is done and returns ctx.Err().
func (e *Enricher) Run(ctx context.Context, r io.Reader, w io.Writer, opts extract.Options) (Stats, error) {
	var stats Stats
	if opts.Logger == nil {
		opts.Logger = e.logger
	}
	out := jsonl.NewWriter(w)

	for value, err := range extract.New(r, opts).All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		if err != nil {
			var malformed *extract.MalformedError
			if errors.As(err, &malformed) {
				stats.Skipped++
				e.logger.Warn("skipping malformed JSON fragment",
					"fragment", extract.Preview(malformed.Fragment),
					"error", malformed.Err)
				continue
			}
			return stats, err
		}

		record, ok := e.Record(value.Data)
		if !ok {
			stats.Invalid++
		}
		if err := out.Write(record); err != nil {
			return stats, err
		}
		stats.Records++
	}

	return stats, nil
}
