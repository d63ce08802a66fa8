package savedjob

import "sync"

// Registry keeps one Store per job seeker.
type Registry struct {
	opts []StoreOption

	mu     sync.Mutex
	stores map[string]registered
}

type registered struct {
	store   *Store
	version string
}

func NewRegistry(opts ...StoreOption) *Registry {
	return &Registry{
		opts:   opts,
		stores: map[string]registered{},
	}
}

// Store returns the store for key, building it around newService the first
// time key is seen. version identifies the credentials newService binds,
// such as a session token: a different version replaces the store so the
// new credentials reach the service.
func (r *Registry) Store(key, version string, newService func() Service) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.stores[key]; ok && reg.version == version {
		return reg.store
	}
	s := NewStore(newService(), r.opts...)
	r.stores[key] = registered{store: s, version: version}
	return s
}

func (r *Registry) Forget(key string) {
	r.mu.Lock()
	delete(r.stores, key)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
