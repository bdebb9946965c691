// SPDX-License-Identifier: MPL-2.0

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// pollTimeout bounds a livereload long-poll; clients re-poll after an
// unchanged answer.
const pollTimeout = 25 * time.Second

// reloader tracks the build stamp the livereload clients poll for. Every
// successful rebuild bumps the stamp and wakes the waiting polls.
type reloader struct {
	mu      sync.Mutex
	stamp   int64
	changed chan struct{}
}

func newReloader() *reloader {
	return &reloader{changed: make(chan struct{})}
}

// Stamp returns the current build stamp.
func (r *reloader) Stamp() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stamp
}

// Bump advances the stamp and releases every waiting long-poll.
func (r *reloader) Bump() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp++
	close(r.changed)
	r.changed = make(chan struct{})
}

// wait returns the channel closed by the next Bump.
func (r *reloader) wait() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// handler serves GET /livereload. Without a since parameter (or with a
// stale one) it answers immediately; otherwise it blocks until the stamp
// changes, the poll times out, or the client goes away.
func (r *reloader) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		since, err := strconv.ParseInt(req.URL.Query().Get("since"), 10, 64)
		if err == nil && since == r.Stamp() {
			select {
			case <-r.wait():
			case <-time.After(pollTimeout):
			case <-req.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(map[string]int64{"stamp": r.Stamp()})
	}
}
