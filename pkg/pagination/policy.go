package pagination

import "fmt"

// Kind discriminates the closed set of traversal policies.
type Kind int

const (
	// KindPages bounds a traversal by the number of pages fetched.
	KindPages Kind = iota + 1

	// KindRecords bounds a traversal by the number of records emitted.
	KindRecords

	// KindAll lets the server alone decide where the traversal ends.
	KindAll
)

// String returns the kind label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindPages:
		return "pages"
	case KindRecords:
		return "records"
	case KindAll:
		return "all"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Policy decides when a traversal stops requesting pages and how much of a
// fetched page reaches the consumer. Construct one with ByPages, ByRecords,
// or All. The zero Policy carries no kind and stands for "caller did not
// choose"; resolve it with Or before starting a traversal.
type Policy struct {
	kind       Kind
	maxPages   int
	maxRecords int
}

// ByPages stops after maxPages pages have been fetched. Fetched pages are
// delivered whole, whatever their size. ByPages(0) makes no requests at all.
func ByPages(maxPages int) Policy {
	return Policy{kind: KindPages, maxPages: maxPages}
}

// ByRecords stops once maxRecords records have been emitted, truncating the
// final page to the exact remaining allowance. ByRecords(0) makes no
// requests at all.
func ByRecords(maxRecords int) Policy {
	return Policy{kind: KindRecords, maxRecords: maxRecords}
}

// All walks every page until the server reports end of data.
func All() Policy {
	return Policy{kind: KindAll}
}

// Kind reports which policy variant this is, or 0 for the zero Policy.
func (p Policy) Kind() Kind { return p.kind }

// IsZero reports whether the caller left the policy unset.
func (p Policy) IsZero() bool { return p == Policy{} }

// Or returns p, or fallback when p is the zero Policy.
func (p Policy) Or(fallback Policy) Policy {
	if p.IsZero() {
		return fallback
	}
	return p
}

// rules is the behavior a Policy resolves to: the three decisions the
// traversal loop delegates at each page boundary.
type rules struct {
	// shouldContinue reports whether another page may be fetched, judged on
	// the state before the fetch.
	shouldContinue func(s State) bool

	// emitLimit returns how many of n freshly fetched records may be
	// emitted. Policies that never truncate return n.
	emitLimit func(s State, n int) int

	// nextURL picks the URL for the following fetch from the server's
	// cursor, or "" to end the traversal.
	nextURL func(serverNext string, newRecordCount int) string
}

// rules resolves the policy to its behavior. Resolving an unknown kind,
// including the zero Policy, is a programming error and panics.
func (p Policy) rules() rules {
	switch p.kind {
	case KindPages:
		return rules{
			shouldContinue: func(s State) bool { return s.PageCount < p.maxPages },
			emitLimit:      func(_ State, n int) int { return n },
			nextURL:        func(serverNext string, _ int) string { return serverNext },
		}
	case KindRecords:
		return rules{
			shouldContinue: func(s State) bool { return s.RecordCount < p.maxRecords },
			emitLimit: func(s State, n int) int {
				remaining := p.maxRecords - s.RecordCount
				if remaining < 0 {
					remaining = 0
				}
				if n < remaining {
					return n
				}
				return remaining
			},
			nextURL: func(serverNext string, newRecordCount int) string {
				// Once the allowance is spent there is no reason to keep the
				// cursor: the next page could only be discarded.
				if newRecordCount >= p.maxRecords {
					return ""
				}
				return serverNext
			},
		}
	case KindAll:
		return rules{
			shouldContinue: func(State) bool { return true },
			emitLimit:      func(_ State, n int) int { return n },
			nextURL:        func(serverNext string, _ int) string { return serverNext },
		}
	default:
		panic(fmt.Sprintf("pagination: unknown policy kind %d", int(p.kind)))
	}
}
