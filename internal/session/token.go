package session

import (
	"context"

	"github.com/angelmondragon/packfinderz-client/internal/store"
)

// TokenSource feeds the transport client the stored bearer token. It
// reads the store directly so it can be wired before the Manager,
// breaking the client/manager construction cycle.
type TokenSource struct {
	store *store.Store
}

func NewTokenSource(st *store.Store) *TokenSource {
	return &TokenSource{store: st}
}

// Token returns the live bearer token, or "" when no session exists.
func (t *TokenSource) Token(ctx context.Context) string {
	if t == nil || t.store == nil {
		return ""
	}
	var sess Session
	ok, err := t.store.GetJSON(ctx, store.NamespaceSession, sessionKey, &sess)
	if err != nil || !ok {
		return ""
	}
	return sess.Token
}
