// Package testutil holds in-memory stand-ins for the stores and adapters used
// by the core usecases. They keep the same conditional update semantics as
// the Mongo repositories so concurrency properties can be tested in process.
package testutil

import "sync"

type fault struct {
	err       error
	remaining int
}

// Faults injects errors into named methods. A negative count fails forever.
type Faults struct {
	mu     sync.Mutex
	faults map[string]*fault
}

func (f *Faults) Fail(method string, err error, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.faults == nil {
		f.faults = make(map[string]*fault)
	}
	f.faults[method] = &fault{err: err, remaining: times}
}

func (f *Faults) Clear(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, method)
}

func (f *Faults) take(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.faults[method]
	if !ok || current.remaining == 0 {
		return nil
	}
	if current.remaining > 0 {
		current.remaining--
	}
	return current.err
}
