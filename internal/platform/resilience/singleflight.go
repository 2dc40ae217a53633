package resilience

import "sync"

// SingleFlight deduplicates concurrent loads for the same key so a burst of
// reads against a cold backend only reaches it once.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()

	return c.val, c.err, false
}

// Forget drops the in-flight entry for key; callers arriving afterwards start
// a fresh call instead of joining the one already running.
func (g *SingleFlight) Forget(key string) {
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
}

// ForgetMatching drops every in-flight entry whose key satisfies match.
func (g *SingleFlight) ForgetMatching(match func(key string) bool) {
	g.mu.Lock()
	for key := range g.calls {
		if match(key) {
			delete(g.calls, key)
		}
	}
	g.mu.Unlock()
}
