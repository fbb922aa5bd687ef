// Package library tracks which games are installed, queued for installation
// or available to install. The three sets are disjoint.
package library

import (
	"sort"
	"sync"

	"launcherd/internal/catalog"
	"launcherd/internal/tasks"
)

// Membership is the set a variant currently belongs to.
type Membership string

const (
	Unknown   Membership = ""
	Installed Membership = "installed"
	Queued    Membership = "queued"
	Available Membership = "available"
)

// Tracker holds the membership of every known game variant.
type Tracker struct {
	mu  sync.RWMutex
	set map[catalog.Variant]Membership
}

// New builds a tracker where installed variants are Installed and every other
// variant in all is Available.
func New(all []catalog.Variant, installed []catalog.Variant) *Tracker {
	t := &Tracker{set: make(map[catalog.Variant]Membership, len(all))}
	for _, v := range all {
		t.set[v] = Available
	}
	for _, v := range installed {
		t.set[v] = Installed
	}
	return t
}

// Of returns the membership of v.
func (t *Tracker) Of(v catalog.Variant) Membership {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set[v]
}

// MarkQueued moves v from available to queued. It reports false, and changes
// nothing, when v is not available.
func (t *Tracker) MarkQueued(v catalog.Variant) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set[v] != Available {
		return false
	}
	t.set[v] = Queued
	return true
}

// MarkUpdating moves an installed v to queued for an update. It reports
// false when v is not installed.
func (t *Tracker) MarkUpdating(v catalog.Variant) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set[v] != Installed {
		return false
	}
	t.set[v] = Queued
	return true
}

// Release undoes a MarkQueued whose submit failed.
func (t *Tracker) Release(v catalog.Variant, back Membership) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set[v] == Queued {
		t.set[v] = back
	}
}

// Apply updates the sets from a driver event. A completed job moves its
// variant from queued to installed; a failed one moves it back to available,
// or to installed when a version is still on disk. Variants the tracker does
// not know and progress events are ignored. It reports whether anything changed.
func (t *Tracker) Apply(e tasks.Event, stillInstalled func(catalog.Variant) bool) bool {
	v := catalog.Variant(e.Variant)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set[v] != Queued {
		return false
	}
	switch e.Type {
	case tasks.EventCompleted:
		t.set[v] = Installed
	case tasks.EventFailed:
		if stillInstalled != nil && stillInstalled(v) {
			t.set[v] = Installed
		} else {
			t.set[v] = Available
		}
	default:
		return false
	}
	return true
}

// Sets returns the three memberships as sorted lists.
func (t *Tracker) Sets() (installed, queued, available []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	installed, queued, available = []string{}, []string{}, []string{}
	for v, m := range t.set {
		switch m {
		case Installed:
			installed = append(installed, string(v))
		case Queued:
			queued = append(queued, string(v))
		case Available:
			available = append(available, string(v))
		}
	}
	sort.Strings(installed)
	sort.Strings(queued)
	sort.Strings(available)
	return installed, queued, available
}
