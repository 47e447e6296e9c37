package screen

import "sync"

// Summary accumulates run-level counts. Increments are mutex-protected so
// any goroutine may add verdicts; reads during a live run go through
// Snapshot.
type Summary struct {
	mu           sync.Mutex
	total        uint64
	clean        uint64
	contaminated uint64
	barcodeHits  map[string]uint64
}

// SummarySnapshot is an immutable copy of a Summary's counters.
type SummarySnapshot struct {
	Total        uint64            `json:"total_reads"`
	Clean        uint64            `json:"clean_count"`
	Contaminated uint64            `json:"contaminated_count"`
	BarcodeHits  map[string]uint64 `json:"barcode_hits"`
}

// NewSummary returns a zeroed Summary.
func NewSummary() *Summary {
	return &Summary{barcodeHits: make(map[string]uint64)}
}

func (s *Summary) add(contaminated bool, barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if contaminated {
		s.contaminated++
		s.barcodeHits[barcode]++
	} else {
		s.clean++
	}
}

// Snapshot returns a consistent copy of the current counts.
func (s *Summary) Snapshot() SummarySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make(map[string]uint64, len(s.barcodeHits))
	for k, v := range s.barcodeHits {
		hits[k] = v
	}
	return SummarySnapshot{
		Total:        s.total,
		Clean:        s.clean,
		Contaminated: s.contaminated,
		BarcodeHits:  hits,
	}
}
