// Package sessionregistry tracks live protocol sessions by an opaque
// caller-supplied key, independent of which of the five token schemes the
// session belongs to, and reaps sessions that go idle or run too long.
package sessionregistry

import (
	"sync"
	"time"

	"github.com/atsh-here/ntat/logging"
)

type item struct {
	scheme       string
	state        interface{}
	lastSeen     int64
	creationTime int64
}

// Registry holds one live session per key across any number of concurrent
// benchmark or demo connections.
type Registry struct {
	maxIdleSeconds     int64
	maxLifetimeSeconds int64

	mu          sync.Mutex
	sessions    map[string]*item
	destroyChan chan string
	stopChan    chan struct{}
}

// New creates a registry and starts its reaper goroutine. maxIdleSeconds
// and maxLifetimeSeconds bound how long a session may sit idle, or exist
// at all, before it is removed.
func New(maxIdleSeconds, maxLifetimeSeconds int64) *Registry {
	r := &Registry{
		maxIdleSeconds:     maxIdleSeconds,
		maxLifetimeSeconds: maxLifetimeSeconds,
		sessions:           make(map[string]*item),
		destroyChan:        make(chan string),
		stopChan:           make(chan struct{}),
	}
	go r.monitor()
	go r.monitorDestroyChan()
	return r
}

// Put registers state under key, tagged with scheme for observability.
func (r *Registry) Put(key, scheme string, state interface{}) {
	now := time.Now().Unix()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[key]; exists {
		logging.For("sessionregistry").Warn().Str("key", key).Msg("overwriting existing session")
	}
	r.sessions[key] = &item{scheme: scheme, state: state, lastSeen: now, creationTime: now}
}

// Get returns the session state registered under key and refreshes its
// last-seen time, or ok=false if no such session exists.
func (r *Registry) Get(key string) (state interface{}, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, exists := r.sessions[key]
	if !exists {
		return nil, false
	}
	it.lastSeen = time.Now().Unix()
	return it.state, true
}

// Remove deletes the session registered under key, if any.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// Destroy asynchronously removes the session registered under key; safe
// to call from within a session's own method.
func (r *Registry) Destroy(key string) {
	r.destroyChan <- key
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Stop halts the reaper goroutines.
func (r *Registry) Stop() {
	close(r.stopChan)
}

func (r *Registry) monitor() {
	log := logging.For("sessionregistry")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			now := time.Now().Unix()
			r.mu.Lock()
			for k, v := range r.sessions {
				if now-v.lastSeen > r.maxIdleSeconds || now-v.creationTime > r.maxLifetimeSeconds {
					log.Debug().Str("key", k).Str("scheme", v.scheme).Msg("reaping stale session")
					delete(r.sessions, k)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *Registry) monitorDestroyChan() {
	for {
		select {
		case <-r.stopChan:
			return
		case key := <-r.destroyChan:
			r.Remove(key)
		}
	}
}
