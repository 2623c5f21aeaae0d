package services

import "sync"

// analysisLocks hands out one advisory mutex per analysis id so purge/insert
// phases of concurrent operations on the same analysis never interleave.
// Different analyses proceed in parallel.
type analysisLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAnalysisLocks() *analysisLocks {
	return &analysisLocks{locks: map[string]*sync.Mutex{}}
}

func (l *analysisLocks) acquire(analysisID string) func() {
	l.mu.Lock()
	m, ok := l.locks[analysisID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[analysisID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
