package pagination

import (
	"iter"
	"sync"
)

// Merge combines independently produced sequences into one. Records from the
// same source keep their order; the interleaving between sources is simply
// whichever record becomes available first. Each source runs on its own
// goroutine, so their fetches overlap, but every source still pulls its own
// pages strictly one at a time.
//
// Errors travel through the merged sequence like records: a failing source
// contributes its error and stops, the others continue. The merged sequence
// ends when every source has ended. Breaking out of the range loop stops all
// sources; a page fetch already in flight completes and is discarded.
func Merge[T any](seqs ...iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		type element struct {
			record T
			err    error
		}

		out := make(chan element)
		done := make(chan struct{})
		defer close(done)

		var wg sync.WaitGroup
		for _, seq := range seqs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for record, err := range seq {
					select {
					case out <- element{record: record, err: err}:
					case <-done:
						return
					}
				}
			}()
		}

		go func() {
			wg.Wait()
			close(out)
		}()

		for e := range out {
			if !yield(e.record, e.err) {
				return
			}
		}
	}
}
