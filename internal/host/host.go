// Package host keeps the accounts loaded by this process, keyed by entry id.
package host

import (
	"fmt"
	"sync"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/engine"
	"github.com/dm/sfm-go/internal/entity"
)

// Account is one configured Seafile account.
type Account struct {
	EntryID string
	Updater *engine.Updater
	// Client serves on-demand calls from the media browser and the
	// thumbnail proxy. It may be the updater's own client wrapped in a
	// circuit breaker.
	Client   client.SeafileClient
	Platform *entity.Platform
	// Config is the redacted-on-export account configuration.
	Config map[string]any
}

// Registry maps entry ids to accounts and remembers insertion order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	accounts map[string]*Account
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{accounts: make(map[string]*Account)}
}

// Add registers acc. Entry ids must be unique.
func (r *Registry) Add(acc *Account) error {
	if acc == nil || acc.Updater == nil {
		return fmt.Errorf("host: account without updater")
	}
	if acc.Client == nil {
		acc.Client = acc.Updater.Client()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acc.EntryID]; ok {
		return fmt.Errorf("host: duplicate entry id %q", acc.EntryID)
	}
	r.accounts[acc.EntryID] = acc
	r.order = append(r.order, acc.EntryID)
	return nil
}

// Remove unloads an account: its entities are closed and its updater stops
// notifying listeners.
func (r *Registry) Remove(entryID string) bool {
	r.mu.Lock()
	acc, ok := r.accounts[entryID]
	if ok {
		delete(r.accounts, entryID)
		for i, id := range r.order {
			if id == entryID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	if acc.Platform != nil {
		acc.Platform.Stop()
	}
	acc.Updater.Stop()
	return true
}

// Get returns the account for an entry id.
func (r *Registry) Get(entryID string) (*Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[entryID]
	return acc, ok
}

// All returns the accounts in the order they were added.
func (r *Registry) All() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.accounts[id])
	}
	return out
}

// Len returns the number of accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
