package check

// Result is one classified probe outcome. Records are immutable once
// inserted. The ID is assigned by the fast index at insertion time and
// comes from a single global sequence shared by all monitors.
type Result struct {
	ID          uint64 `json:"id"`
	Environment string `json:"environment"`
	Success     bool   `json:"success"`
	Duration    int64  `json:"duration"`
	Timestamp   int64  `json:"timestamp"`
}
