// Package chats keeps a rolling registry of chats the bot has seen.
// It backs the owner commands (!stats, !listgroups) without requiring a
// network round-trip per query.
package chats

import (
	"sort"
	"sync"
	"time"
)

// Info describes one known chat.
type Info struct {
	JID      string
	Name     string
	IsGroup  bool
	LastSeen time.Time
}

// Registry is a concurrency-safe chat set. Concurrent upserts from message
// handler goroutines are expected.
type Registry struct {
	mu    sync.RWMutex
	chats map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chats: make(map[string]Info)}
}

// Upsert records a chat observation. An empty name never overwrites a known
// name (group subjects arrive separately from plain messages).
func (r *Registry) Upsert(jid, name string, isGroup bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.chats[jid]
	if ok && name == "" {
		name = existing.Name
	}
	r.chats[jid] = Info{
		JID:      jid,
		Name:     name,
		IsGroup:  isGroup,
		LastSeen: time.Now(),
	}
}

// Counts returns total, private and group chat counts.
func (r *Registry) Counts() (total, private, groups int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.chats {
		if c.IsGroup {
			groups++
		} else {
			private++
		}
	}
	return len(r.chats), private, groups
}

// Groups returns the known groups sorted by JID for stable listings.
func (r *Registry) Groups() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0)
	for _, c := range r.chats {
		if c.IsGroup {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

// Len returns the number of known chats.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chats)
}
