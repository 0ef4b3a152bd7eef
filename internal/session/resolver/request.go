package resolver

import (
	"context"
	"sync"
	"sync/atomic"

	"taskhub/backend/internal/session/domain"
)

// Request memoizes session resolution for one inbound request. Create one per request with
// NewRequest; never share it across requests.
type Request struct {
	resolver *Resolver
	token    string

	once     sync.Once
	resolved atomic.Bool
	session  *domain.Resolved
	outcome  Outcome
	err      error
}

// NewRequest returns a memo for the given cookie value. Nothing is resolved until Session is called.
func (r *Resolver) NewRequest(token string) *Request {
	return &Request{resolver: r, token: token}
}

// Session resolves on first call and returns the same result on every later call.
func (q *Request) Session(ctx context.Context) (*domain.Resolved, Outcome, error) {
	q.once.Do(func() {
		q.session, q.outcome, q.err = q.resolver.Resolve(ctx, q.token)
		q.resolved.Store(true)
	})
	return q.session, q.outcome, q.err
}

// Resolved reports whether Session has run.
func (q *Request) Resolved() bool {
	return q.resolved.Load()
}

type contextKey struct{ name string }

var requestKey = contextKey{"session_request"}

// WithRequest returns a context carrying q.
func WithRequest(ctx context.Context, q *Request) context.Context {
	return context.WithValue(ctx, requestKey, q)
}

// RequestFromContext returns the memo set by WithRequest and true if set; otherwise nil, false.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	q, ok := ctx.Value(requestKey).(*Request)
	return q, ok && q != nil
}

// SessionFromContext resolves the session of the request carried by ctx. It returns nil, nil when
// ctx carries no request or the caller is not logged in.
func SessionFromContext(ctx context.Context) (*domain.Resolved, error) {
	q, ok := RequestFromContext(ctx)
	if !ok {
		return nil, nil
	}
	sess, _, err := q.Session(ctx)
	return sess, err
}
