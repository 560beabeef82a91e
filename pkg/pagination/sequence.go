package pagination

import (
	"context"
	"iter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for traversal activity.
var (
	pulseTraversalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_traversals_total",
		Help: "Total traversals started by policy kind",
	}, []string{"policy"})

	pulsePagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_pages_fetched_total",
		Help: "Total pages fetched across all traversals",
	})

	pulseRecordsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_records_emitted_total",
		Help: "Total records delivered to consumers across all traversals",
	})
)

// State is the traversal position carried between page fetches. Each page
// boundary produces a fresh State value rather than mutating the previous
// one, so a State in hand never changes underneath its holder.
type State struct {
	// NextURL is the absolute URL of the next page to fetch. "" means the
	// traversal is finished and no further requests may be made.
	NextURL string

	// PageCount is the number of pages fetched so far.
	PageCount int

	// RecordCount is the number of records emitted so far, after any policy
	// truncation.
	RecordCount int
}

// Page is the decoded result of fetching one page: the records in server
// order, and the cursor for the page after it. Next == "" means the server
// reported end of data.
type Page[T any] struct {
	Data []T
	Next string
}

// FetchFunc retrieves and decodes the page at url. Implementations perform
// exactly one request per call and honor ctx cancellation.
type FetchFunc[T any] func(ctx context.Context, url string) (Page[T], error)

// Sequence returns the lazy traversal of the page chain starting at startURL,
// bounded by policy. Nothing is fetched until the consumer pulls the first
// record, and each later page is fetched only once the consumer has drained
// the one before it. Breaking out of the range loop ends the traversal with
// no further requests.
//
// A fetch failure surfaces as the final element of the sequence, a zero
// record paired with the error; the traversal does not continue past it.
// Calling Sequence with the zero Policy panics. Use Policy.Or to supply a
// default.
func Sequence[T any](ctx context.Context, startURL string, policy Policy, fetch FetchFunc[T]) iter.Seq2[T, error] {
	r := policy.rules()

	return func(yield func(T, error) bool) {
		pulseTraversalsTotal.WithLabelValues(policy.kind.String()).Inc()
		log.Debug().
			Str("policy", policy.kind.String()).
			Str("url", startURL).
			Msg("Starting traversal")

		s := State{NextURL: startURL}
		for {
			if s.NextURL == "" {
				break
			}
			if !r.shouldContinue(s) {
				break
			}

			page, err := fetch(ctx, s.NextURL)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			pulsePagesFetchedTotal.Inc()

			// An empty page is authoritative end of data, even when the
			// server still handed out a cursor.
			if len(page.Data) == 0 {
				break
			}

			emit, next := advance(r, s, page)
			for _, record := range emit {
				if !yield(record, nil) {
					return
				}
				pulseRecordsEmittedTotal.Inc()
			}
			s = next
		}

		log.Debug().
			Int("pages", s.PageCount).
			Int("records", s.RecordCount).
			Msg("Traversal complete")
	}
}

// advance applies one fetched page to the traversal state under the policy
// rules. It returns the prefix of the page the consumer may see and the
// successor state, and performs no I/O.
func advance[T any](r rules, s State, page Page[T]) ([]T, State) {
	emit := page.Data[:r.emitLimit(s, len(page.Data))]
	newCount := s.RecordCount + len(emit)
	next := State{
		NextURL:     r.nextURL(page.Next, newCount),
		PageCount:   s.PageCount + 1,
		RecordCount: newCount,
	}
	return emit, next
}

// Collect drains seq into a slice. The first error ends the collection and
// is returned without the records gathered before it, so callers get either
// the complete traversal or its failure, never a silent prefix.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var records []T
	for record, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
