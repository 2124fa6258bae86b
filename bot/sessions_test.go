package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlbot/scraper"
)

func squidResults() []scraper.SearchResult {
	return []scraper.SearchResult{
		{ID: "12345", Title: "Squid Game", URL: "https://mydramalist.com/12345"},
		{ID: "67890", Title: "Squid Game Season 2", URL: "https://mydramalist.com/67890"},
		{ID: "11111", Title: "Round Six", URL: "https://mydramalist.com/11111"},
	}
}

func TestSessionStoreGet(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, "Squid Game", squidResults())

	r, ok := store.Get(1, "67890")
	require.True(t, ok)
	assert.Equal(t, "Squid Game Season 2", r.Title)
	assert.Equal(t, "https://mydramalist.com/67890", r.URL)
}

func TestSessionStoreUnknownID(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, "Squid Game", squidResults())

	_, ok := store.Get(1, "99999")
	assert.False(t, ok)
}

func TestSessionStoreMissingUser(t *testing.T) {
	store := NewSessionStore()
	_, ok := store.Get(42, "12345")
	assert.False(t, ok)
}

// A new search replaces the previous result set: ids from the old set must
// not resolve anymore.
func TestSessionStoreOverwrite(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, "Squid Game", squidResults())
	store.Put(1, "Kingdom", []scraper.SearchResult{
		{ID: "55555", Title: "Kingdom", URL: "https://mydramalist.com/55555"},
	})

	_, ok := store.Get(1, "12345")
	assert.False(t, ok)

	r, ok := store.Get(1, "55555")
	require.True(t, ok)
	assert.Equal(t, "Kingdom", r.Title)
}

func TestSessionStorePerUserIsolation(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, "Squid Game", squidResults())

	_, ok := store.Get(2, "12345")
	assert.False(t, ok)
}
