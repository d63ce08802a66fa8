package savedjob

import (
	"context"
	"sync"
)

// DefaultPerPage is how many saved jobs a list page shows.
const DefaultPerPage = 6

const pageLinksPerPage = 8

type PageKind string

const (
	PageLoading PageKind = "loading"
	PageFailed  PageKind = "failed"
	PageList    PageKind = "list"
	PageEmpty   PageKind = "empty"
)

// Page is what the saved jobs screen renders for a store snapshot.
type Page struct {
	Kind        PageKind
	Error       string
	Jobs        []SavedJob
	Total       int
	CurrentPage int
	LastPage    int
	Pages       []int
}

// View binds one mount of the saved jobs screen to a Store. It reads
// snapshots and forwards intents, it never edits the container itself.
type View struct {
	store   *Store
	perPage int
	changes chan struct{}

	mu          sync.Mutex
	mounted     bool
	fetched     bool
	unsubscribe func()
}

func NewView(store *Store, perPage int) *View {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &View{
		store:   store,
		perPage: perPage,
		changes: make(chan struct{}, 1),
	}
}

// Mount subscribes to the store and issues the initial fetch when the
// store has never been loaded. A view fetches at most once.
func (v *View) Mount(ctx context.Context) {
	if v.subscribe() {
		v.store.RequestFetch(ctx)
	}
}

// MountAsync is Mount with the initial fetch running in the background on
// ctx. The returned channel is closed once that fetch has returned, or
// right away when no fetch was needed.
func (v *View) MountAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if !v.subscribe() {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		v.store.RequestFetch(ctx)
	}()
	return done
}

// subscribe marks the view mounted and reports whether it owes the store
// its initial fetch.
func (v *View) subscribe() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		v.mounted = true
		v.unsubscribe = v.store.Subscribe(v.changed)
	}
	shouldFetch := !v.fetched && v.store.Status() == StatusIdle
	if shouldFetch {
		v.fetched = true
	}
	return shouldFetch
}

// Unmount stops change notifications. Results landing afterwards are
// still applied by the store but no longer reach this view.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	v.unsubscribe()
	v.unsubscribe = nil
}

func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

func (v *View) changed() {
	v.mu.Lock()
	mounted := v.mounted
	v.mu.Unlock()
	if !mounted {
		return
	}
	select {
	case v.changes <- struct{}{}:
	default:
	}
}

// Changes signals, coalesced, that the store moved on while mounted.
func (v *View) Changes() <-chan struct{} {
	return v.changes
}

// Settle waits for a pending or in-flight fetch to finish, or for ctx to
// be done, and returns the latest snapshot.
func (v *View) Settle(ctx context.Context) State {
	for {
		st := v.store.State()
		pending := st.Status == StatusLoading || st.Status == StatusIdle
		if !pending || !v.Mounted() {
			return st
		}
		select {
		case <-ctx.Done():
			return v.store.State()
		case <-v.changes:
		}
	}
}

// Page builds page n (1-based) of the current snapshot.
func (v *View) Page(n int) Page {
	return buildPage(v.store.State(), n, v.perPage)
}

// Remove forwards a removal gesture. The listed job disappears only once
// the store confirms it.
func (v *View) Remove(ctx context.Context, jobID string) error {
	return v.store.RequestRemove(ctx, jobID)
}

// Save forwards a bookmark gesture and reloads the list once it is stored.
func (v *View) Save(ctx context.Context, jobID string) error {
	if err := v.store.RequestSave(ctx, jobID); err != nil {
		return err
	}
	v.store.RequestFetch(ctx)
	return nil
}

// Refresh is the explicit retry after a failed or stale list.
func (v *View) Refresh(ctx context.Context) bool {
	return v.store.RequestFetch(ctx)
}

func buildPage(st State, n, perPage int) Page {
	switch st.Status {
	case StatusIdle, StatusLoading:
		return Page{Kind: PageLoading}
	case StatusFailed:
		return Page{Kind: PageFailed, Error: st.Error}
	}

	total := len(st.Items)
	if total == 0 {
		return Page{Kind: PageEmpty, CurrentPage: 1, LastPage: 1, Pages: []int{1}}
	}
	lastPage := (total + perPage - 1) / perPage
	if n < 1 {
		n = 1
	}
	if n > lastPage {
		n = lastPage
	}
	start := (n - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	pages := []int{}
	pageLinkShift := (pageLinksPerPage / 2) + 1
	firstPage := 1
	if n-pageLinkShift > 0 {
		firstPage = n - pageLinkShift
	}
	for i, j := firstPage, 1; i <= lastPage && j <= pageLinksPerPage; i, j = i+1, j+1 {
		pages = append(pages, i)
	}

	return Page{
		Kind:        PageList,
		Jobs:        st.Items[start:end],
		Total:       total,
		CurrentPage: n,
		LastPage:    lastPage,
		Pages:       pages,
	}
}
