package controller

import "sync"

// Title is a single-value broadcast for the screen heading. Subscribers are
// notified synchronously on every change; a late subscriber receives only
// the latest value, never history.
type Title struct {
	mu      sync.Mutex
	current string
	subs    map[int]func(string)
	nextID  int
}

// NewTitle creates a broadcast holding initial
func NewTitle(initial string) *Title {
	return &Title{current: initial, subs: make(map[int]func(string))}
}

// Current returns the latest title
func (t *Title) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Set replaces the title and notifies all subscribers
func (t *Title) Set(title string) {
	t.mu.Lock()
	t.current = title
	fns := make([]func(string), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(title)
	}
}

// Subscribe registers fn, immediately delivering the current value. The
// returned cancel function removes the registration.
func (t *Title) Subscribe(fn func(string)) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	current := t.current
	t.mu.Unlock()

	fn(current)

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}
