package plugins

import "sync"

// Memo wraps a Provider and caches results per path for the lifetime
// of one diagnostic run. Errors are cached too: a corrupt plugin stays
// corrupt for the duration of a run.
type Memo struct {
	inner Provider

	mu      sync.Mutex
	headers map[string]*Header
	errs    map[string]error
}

// NewMemo creates a memoizing wrapper around inner.
func NewMemo(inner Provider) *Memo {
	return &Memo{
		inner:   inner,
		headers: make(map[string]*Header),
		errs:    make(map[string]error),
	}
}

// Header returns the cached header for path, parsing it on first use.
func (m *Memo) Header(path string) (*Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.headers[path]; ok {
		return h, nil
	}
	if err, ok := m.errs[path]; ok {
		return nil, err
	}

	h, err := m.inner.Header(path)
	if err != nil {
		m.errs[path] = err
		return nil, err
	}
	m.headers[path] = h
	return h, nil
}
