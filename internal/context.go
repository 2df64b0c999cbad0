package internal

import (
	"context"
	"time"
)

// Actor is the authenticated session user threaded through every service
// call. There is no ambient session slot: handlers resolve the actor once
// and everything below reads it from context.
type Actor struct {
	ID       string
	SchoolID string
	Name     string
	Email    string
	Role     string
}

type ctxKey string

const contextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(contextActorKey).(*Actor)
	return actor, ok && actor != nil
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
