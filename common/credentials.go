package common

import (
	"sync"

	"golang.org/x/oauth2"
)

// CredentialStore holds the current OAuth2 token for a client instance.
// The token is replaced wholesale on a successful refresh, never field by
// field, so readers always see a consistent access/refresh pair.
//
// Refresh is not single-flighted: concurrent calls that each hit a 401 may
// each trigger their own refresh exchange. The last writer wins, which is
// harmless as long as the refresh endpoint tolerates repeated exchanges.
type CredentialStore struct {
	mu    sync.Mutex
	token *oauth2.Token
}

// NewCredentialStore seeds the store with an initial token. A nil token is
// allowed; calls made before any token is set simply go out unauthenticated.
func NewCredentialStore(token *oauth2.Token) *CredentialStore {
	return &CredentialStore{token: token}
}

// Token returns the current token snapshot. Callers must not mutate it.
func (s *CredentialStore) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Replace swaps in a new token wholesale.
func (s *CredentialStore) Replace(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
