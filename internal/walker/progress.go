package walker

import (
	"maps"
	"slices"
	"sync"
)

// Progress maps leaf paths to the number of completed passes. Each leaf
// only writes its own key; the mutex is there because Go maps are not safe
// for concurrent writers even on disjoint keys.
type Progress struct {
	mu     sync.RWMutex
	counts map[string]int
	states map[string]LeafState
}

// NewProgress creates a progress map seeded with initial, which may be nil
func NewProgress(initial map[string]int) *Progress {
	p := &Progress{
		counts: make(map[string]int, len(initial)),
		states: make(map[string]LeafState, len(initial)),
	}
	for path, n := range initial {
		p.counts[path] = n
		p.states[path] = LeafPending
	}
	return p
}

// Get returns the pass count of path and whether it is known
func (p *Progress) Get(path string) (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.counts[path]
	return n, ok
}

// Set records the pass count of path
func (p *Progress) Set(path string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[path] = n
}

// Snapshot returns a copy of all pass counts
func (p *Progress) Snapshot() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.counts)
}

// Len returns the number of known leaves
func (p *Progress) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.counts)
}

// Completed returns the sum of all pass counts
func (p *Progress) Completed() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0
	for _, n := range p.counts {
		total += n
	}
	return total
}

func (p *Progress) setState(path string, s LeafState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[path] = s
}

// State returns the last known state of path
func (p *Progress) State(path string) LeafState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.states[path]
}

// StateCounts returns how many leaves are in each state
func (p *Progress) StateCounts() map[LeafState]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[LeafState]int)
	for _, s := range p.states {
		out[s]++
	}
	return out
}

// MarkDone flags paths as fully translated and back-translated, so a
// resumed walk leaves them alone
func (p *Progress) MarkDone(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, path := range paths {
		p.states[path] = LeafDone
	}
}

// Done returns the sorted paths of all finished leaves
func (p *Progress) Done() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for path, s := range p.states {
		if s == LeafDone {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	return out
}
