package sink

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"
)

// Run streams seq into w until the sequence ends or either side fails. It
// returns the number of records delivered. A failing record is not counted
// and no further records are pulled, so the traversal behind seq stops
// fetching as well.
func Run[T any](ctx context.Context, w Writer, seq iter.Seq2[T, error]) (int, error) {
	delivered := 0
	for record, err := range seq {
		if err != nil {
			return delivered, err
		}
		if err := w.Write(ctx, record); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

// Drain behaves like Run but counts delivery failures and keeps consuming
// instead of stopping on them. A traversal error still ends the drain: the
// sequence has nothing after it.
func Drain[T any](ctx context.Context, w Writer, seq iter.Seq2[T, error]) (delivered, failed int, err error) {
	for record, seqErr := range seq {
		if seqErr != nil {
			return delivered, failed, seqErr
		}
		if writeErr := w.Write(ctx, record); writeErr != nil {
			failed++
			log.Warn().Err(writeErr).Msg("Sink delivery failed, record skipped")
			continue
		}
		delivered++
	}
	return delivered, failed, nil
}
