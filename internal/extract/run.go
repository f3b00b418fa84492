package extract

import (
	"context"
	"errors"
	"io"

	"github.com/benchharness/benchjson/internal/jsonl"
)

// Run copies every value extracted from r to w as JSON Lines, flushing after
// each line. Malformed fragments in strict mode are logged and skipped.
//
// Run stops early when ctx is done, after the value in flight, and returns
// ctx.Err().
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Stats, error) {
	ex := New(r, opts)
	out := jsonl.NewWriter(w)

	for value, err := range ex.All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ex.Stats(), ctxErr
		}

		if err != nil {
			var malformed *MalformedError
			if errors.As(err, &malformed) {
				ex.logger.Warn("skipping malformed JSON fragment",
					"fragment", Preview(malformed.Fragment),
					"error", malformed.Err)
				continue
			}
			return ex.Stats(), err
		}

		if err := out.Write(value.Data); err != nil {
			return ex.Stats(), err
		}
	}

	return ex.Stats(), nil
}
