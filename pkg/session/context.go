package session

import "context"

type storeContextKey struct{}

// WithStore adds the per-request store to the context.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// FromContext retrieves the per-request store from the context.
func FromContext(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(storeContextKey{}).(*Store)
	return store, ok
}

// MustFromContext retrieves the store or panics. Use inside handlers that
// only run behind the session middleware.
func MustFromContext(ctx context.Context) *Store {
	store, ok := FromContext(ctx)
	if !ok {
		panic("session: store not found in context")
	}
	return store
}
