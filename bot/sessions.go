package bot

import (
	"sync"

	"mdlbot/scraper"
)

// userSession holds the single most recent search for one user. A new
// search overwrites the previous set, so the store is bounded at one
// result set per user by construction.
type userSession struct {
	query   string
	results []scraper.SearchResult
}

// SessionStore keeps per-user selection state between a search message and
// the button click that follows it.
type SessionStore struct {
	mu    sync.Mutex
	users map[int64]userSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{users: make(map[int64]userSession)}
}

// Put replaces the user's active result set.
func (s *SessionStore) Put(userID int64, query string, results []scraper.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = userSession{query: query, results: results}
}

// Get returns the stored result matching id, if the user's active set
// contains it. Ids from earlier searches miss by construction; a miss
// means "search again", never a lookup into stale data.
func (s *SessionStore) Get(userID int64, id string) (scraper.SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users[userID].results {
		if r.ID == id {
			return r, true
		}
	}
	return scraper.SearchResult{}, false
}
