package collection

import (
	"sync"

	"github.com/pders01/postdeck/internal/api"
)

// State is the shared cache for one owner's posts screen. It is created when
// the screen opens and dropped when it closes.
type State struct {
	mu      sync.RWMutex
	ownerID int
	cache   *PageCache
	deleted *DeletedSet
	total   int
	known   bool
	seq     uint64 // requests issued
	epoch   uint64 // successful deletes
}

func NewState(ownerID int) *State {
	return &State{
		ownerID: ownerID,
		cache:   NewPageCache(),
		deleted: NewDeletedSet(),
	}
}

func (s *State) OwnerID() int {
	return s.ownerID
}

// Total returns the last known total count. known is false until the first
// successful fetch.
func (s *State) Total() (total int, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total, s.known
}

// Epoch counts successful deletes. A fetch issued under an older epoch may
// carry positions and a total that no longer hold.
func (s *State) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *State) IsDeleted(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deleted.Contains(id)
}

func (s *State) Deleted() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deleted.IDs()
}

func (s *State) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}

func (s *State) Get(id int) (api.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Get(id)
}

// Materialize returns the cached posts minus tombstones, in insertion order.
func (s *State) Materialize() []api.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.materializeLocked()
}

func (s *State) materializeLocked() []api.Post {
	values := s.cache.Values()
	out := values[:0]
	for _, p := range values {
		if !s.deleted.Contains(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// begin numbers a new request and reports the epoch it is issued under.
func (s *State) begin() (seq, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, s.epoch
}

// merge applies a fetched page. With discardStale set, a page fetched before
// a delete landed is dropped and ErrStale returned. Fetches overtaken only by
// other fetches always merge.
func (s *State) merge(epoch uint64, discardStale bool, page *api.PostPage) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if discardStale && epoch < s.epoch {
		return 0, ErrStale
	}

	for _, p := range page.Posts {
		if s.deleted.Contains(p.ID) {
			continue
		}
		if s.cache.Insert(p) {
			added++
		}
	}
	s.total = page.TotalPosts
	s.known = true
	return added, nil
}
