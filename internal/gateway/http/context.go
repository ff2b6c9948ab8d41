package http

import (
	"context"

	"github.com/ifrsconsole/console/internal/gateway/domain"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func withSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// sessionFromContext returns the session SessionMiddleware attached.
func sessionFromContext(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(domain.Session)
	return sess, ok
}
