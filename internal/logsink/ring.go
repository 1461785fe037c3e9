// Package logsink keeps the most recent log lines in memory so they can be
// served over HTTP.
package logsink

import (
	"strings"
	"sync"
)

const DefaultSize = 200

// Ring is a fixed-size buffer of log lines that drops the oldest line when
// full. It is safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	// partial holds a line written without its trailing newline.
	partial string
}

func New(size int) *Ring {
	if size < 1 {
		size = DefaultSize
	}
	return &Ring{lines: make([]string, size)}
}

func (r *Ring) Emit(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit(line)
}

func (r *Ring) emit(line string) {
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// Write splits p into lines and emits each complete one.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text := r.partial + string(p)
	parts := strings.Split(text, "\n")
	r.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		if line = strings.TrimRight(line, "\r"); line != "" {
			r.emit(line)
		}
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]string, r.next)
		copy(out, r.lines[:r.next])
		return out
	}
	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	return append(out, r.lines[:r.next]...)
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.lines)
	}
	return r.next
}
