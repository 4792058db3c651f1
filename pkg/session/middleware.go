package session

import (
	"log/slog"
	"net/http"
)

// Middleware gives every request its own Store, threads it through the
// request context and commits pending cookie mutations exactly once:
// either just before the handler writes its first response byte (cookies
// are headers, so they must go out first), or after the handler returns
// without writing. A handler that panics or bails out early leaves the
// mutations uncommitted, which is exactly the abort-means-discard
// semantics wanted.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := m.NewStore(r)
		ctx := WithStore(r.Context(), store)

		cw := &commitWriter{ResponseWriter: w, store: store}
		next.ServeHTTP(cw, r.WithContext(ctx))

		if err := cw.finish(); err != nil {
			m.log.ErrorContext(r.Context(), "session commit failed",
				slog.String("path", r.URL.Path), slog.Any("error", err))
			if !cw.wroteHeader {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	})
}

// commitWriter defers the session commit until the response is about to
// start. If the commit fails at that point the response is turned into a
// generic failure instead of pretending the session state was saved.
type commitWriter struct {
	http.ResponseWriter

	store        *Store
	committed    bool
	wroteHeader  bool
	suppressBody bool
	commitErr    error
}

func (cw *commitWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}

	if !cw.committed {
		cw.committed = true
		if err := cw.store.Commit(cw.ResponseWriter); err != nil {
			cw.commitErr = err
			cw.suppressBody = true
			cw.wroteHeader = true
			cw.ResponseWriter.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	cw.wroteHeader = true
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.suppressBody {
		// The handler's body is dropped; the client got a failure status.
		return len(b), nil
	}
	return cw.ResponseWriter.Write(b)
}

// finish commits when the handler produced no output at all, and reports
// any commit error captured along the way.
func (cw *commitWriter) finish() error {
	if cw.commitErr != nil {
		return cw.commitErr
	}
	if !cw.committed {
		cw.committed = true
		return cw.store.Commit(cw.ResponseWriter)
	}
	return nil
}
