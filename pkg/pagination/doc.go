// Package pagination turns cursor-paginated Pulse collections into lazy,
// demand-driven sequences.
//
// The Pulse API returns collections one page at a time, each page carrying
// the absolute URL of its successor. This package walks that chain
// sequentially and exposes the records as an iter.Seq2 stream: a page is
// fetched only when the consumer asks for more, so abandoning the loop
// abandons the traversal with no further requests.
//
// Example usage:
//
//	seq := pagination.Sequence(ctx, startURL, pagination.ByPages(3), fetch)
//	for record, err := range seq {
//		if err != nil {
//			return err
//		}
//		process(record)
//	}
//
// The traversal:
//   - Fetches pages one at a time, in order, on the consumer's goroutine
//   - Stops when the policy is satisfied or the server reports end of data
//   - Treats an empty page as authoritative end of data, cursor or not
//   - Yields a fetch failure as the final element of the sequence
//   - Never fetches a page whose records the policy would discard
package pagination
