package main

import (
	"sync"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
)

// draftRegistry holds the in-memory editing sessions keyed by plan ID. A
// draft exists from the first edit until the process restarts; handlers
// rehydrate from storage when a plan has no live draft.
type draftRegistry struct {
	mu     sync.Mutex
	stores map[string]*editor.Store
}

func newDraftRegistry() *draftRegistry {
	return &draftRegistry{stores: make(map[string]*editor.Store)}
}

func (reg *draftRegistry) get(planID string) (*editor.Store, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	store, ok := reg.stores[planID]
	return store, ok
}

// getOrCreate returns the live draft for the plan, seeding one from initial
// when none exists yet.
func (reg *draftRegistry) getOrCreate(planID string, initial editor.State) *editor.Store {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if store, ok := reg.stores[planID]; ok {
		return store
	}
	store := editor.NewStore(initial)
	reg.stores[planID] = store
	return store
}
