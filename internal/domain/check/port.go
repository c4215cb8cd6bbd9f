package check

import "context"

// Index is the in-memory result store. Insert assigns the next value of
// the global id sequence; the assignment and the store are atomic as a
// unit, so concurrent callers never observe a duplicate or a gap.
type Index interface {
	Insert(r Result) (uint64, error)
	Latest() (Result, error)
}

// Log is the durable check history. Each Insert is one transaction.
type Log interface {
	Insert(ctx context.Context, r Result, rawStatus string) error
}
