package order

import "sync"

// Registry holds the one active session per cashier device. Sessions are
// created lazily on first use and live until the process exits; a session
// never survives an app restart.
type Registry struct {
	catalog   Catalog
	submitter Submitter
	publisher Publisher

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(catalog Catalog, submitter Submitter, publisher Publisher) *Registry {
	return &Registry{
		catalog:   catalog,
		submitter: submitter,
		publisher: publisher,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the cashier's active session, creating an empty one if
// none exists yet.
func (r *Registry) Session(storeID, cashierID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[cashierID]; ok {
		return s
	}
	s := NewSession(storeID, cashierID, r.catalog, r.submitter, r.publisher)
	r.sessions[cashierID] = s
	return s
}

// Drop discards a cashier's session, e.g. on logout.
func (r *Registry) Drop(cashierID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, cashierID)
}
