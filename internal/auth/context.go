package auth

import "context"

type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession returns a new context with the session stored in it.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the session from the context.
// Returns nil if no session is present.
func SessionFromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// Scope returns the owner and agent IDs of the session in ctx, or zeros
// when there is none.
func Scope(ctx context.Context) (ownerID, agentID int64) {
	if s := SessionFromContext(ctx); s != nil {
		return s.OwnerID, s.AgentID
	}
	return 0, 0
}
