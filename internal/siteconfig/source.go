package siteconfig

import (
	"sync"
	"sync/atomic"
)

// Source holds the effective configuration. It serves the defaults until
// Freeze is called, and never changes after that.
type Source struct {
	current atomic.Pointer[Config]
	once    sync.Once
	frozen  chan struct{}
}

func NewSource() *Source {
	s := &Source{frozen: make(chan struct{})}
	d := Defaults()
	s.current.Store(&d)
	return s
}

// Current returns the configuration in effect now.
func (s *Source) Current() Config {
	return *s.current.Load()
}

// Freeze installs cfg permanently. Only the first call has any effect; it
// reports whether cfg was installed.
func (s *Source) Freeze(cfg Config) bool {
	applied := false
	s.once.Do(func() {
		s.current.Store(&cfg)
		close(s.frozen)
		applied = true
	})
	return applied
}

// Frozen reports whether the configuration has been frozen.
func (s *Source) Frozen() bool {
	select {
	case <-s.frozen:
		return true
	default:
		return false
	}
}

// Done is closed once the configuration is frozen.
func (s *Source) Done() <-chan struct{} {
	return s.frozen
}
