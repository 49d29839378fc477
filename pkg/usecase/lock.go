package usecase

import (
	"path/filepath"
	"sync"
)

// targetLocks holds one mutex per target directory. Entries are removed when
// no goroutine holds or waits for them.
type targetLocks struct {
	mu    sync.Mutex
	locks map[string]*targetLock
}

type targetLock struct {
	mu   sync.Mutex
	refs int
}

func newTargetLocks() *targetLocks {
	return &targetLocks{
		locks: make(map[string]*targetLock),
	}
}

func (l *targetLocks) lock(target string) func() {
	key := lockKey(target)

	l.mu.Lock()
	tl, ok := l.locks[key]
	if !ok {
		tl = &targetLock{}
		l.locks[key] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, key)
		}
	}
}

func lockKey(target string) string {
	if abs, err := filepath.Abs(target); err == nil {
		return abs
	}
	return filepath.Clean(target)
}
