package middleware

import (
	"context"
	"net/http"

	"github.com/Strob0t/SiteForge/internal/domain/activity"
)

// Headers carrying the acting identity for event attribution. Authentication
// happens upstream; the engine only records who a mutation came from.
const (
	headerActorID   = "X-Actor-ID"
	headerActorName = "X-Actor-Name"
	headerActorRole = "X-Actor-Role"
)

type actorKey struct{}

// Actor is HTTP middleware that reads the acting identity headers into the
// request context. Requests without identity headers are attributed to the
// system actor so the audit trail never has blank attribution.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := activity.Actor{
			UserID:   r.Header.Get(headerActorID),
			UserName: r.Header.Get(headerActorName),
			Role:     r.Header.Get(headerActorRole),
		}
		if actor.UserID == "" {
			actor = SystemActor()
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the acting identity stored by the Actor
// middleware, or the system actor when none is present.
func ActorFromContext(ctx context.Context) activity.Actor {
	if actor, ok := ctx.Value(actorKey{}).(activity.Actor); ok {
		return actor
	}
	return SystemActor()
}

// SystemActor is the fallback identity for unattributed mutations
// (scheduled jobs, queue consumers, anonymous requests).
func SystemActor() activity.Actor {
	return activity.Actor{UserID: "system", UserName: "System"}
}
