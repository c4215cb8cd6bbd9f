package store

import (
	"errors"
	"sync"

	"github.com/envwatch/envwatch/internal/domain/check"
)

var (
	ErrEmpty     = errors.New("no results inserted")
	ErrExhausted = errors.New("result index full")
)

var _ check.Index = (*Memory)(nil)

// Memory is the fast in-memory result index. It holds every result ever
// inserted, assigns ids from a single global sequence and answers only
// one query: the most recently inserted record.
type Memory struct {
	mu      sync.Mutex
	results []check.Result
	max     int
}

// NewMemory creates an empty index. max bounds the number of records the
// index will accept; 0 means unbounded.
func NewMemory(max int) *Memory {
	return &Memory{max: max}
}

// Insert assigns the next id and stores the record. Ids start at 1 and
// increase by exactly one per insertion, regardless of which monitor
// inserted. Returns ErrExhausted once the capacity limit is reached.
func (m *Memory) Insert(r check.Result) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.results) >= m.max {
		return 0, ErrExhausted
	}
	r.ID = uint64(len(m.results)) + 1
	m.results = append(m.results, r)
	return r.ID, nil
}

// Latest returns the record with the maximum assigned id.
func (m *Memory) Latest() (check.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.results) == 0 {
		return check.Result{}, ErrEmpty
	}
	return m.results[len(m.results)-1], nil
}

// Len reports how many records have been inserted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
