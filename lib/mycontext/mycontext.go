package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	// Set by the identity-aware proxy in front of the service
	UserUIDHeader   = "X-User-Uid"
	UserEmailHeader = "X-User-Email"
)

// CtxTraceContext is a context key for the trace context (used by mylog)
type CtxTraceContext struct{}

// CtxUser is a context key for the identity of the caller
type CtxUser struct{}

// User is the identity as supplied by the external identity provider.
// An empty UID means the caller is a guest.
type User struct {
	UID   string
	Email string
}

func (u User) IsGuest() bool {
	return u.UID == ""
}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	var trace string

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	traceContext := r.Header.Get("X-Cloud-Trace-Context")
	traceParts := strings.Split(traceContext, "/")

	if len(traceParts) > 0 && len(traceParts[0]) > 0 {
		trace = fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
	}

	c := context.WithValue(r.Context(), CtxTraceContext{}, trace)

	return context.WithValue(c, CtxUser{}, User{
		UID:   strings.TrimSpace(r.Header.Get(UserUIDHeader)),
		Email: strings.TrimSpace(r.Header.Get(UserEmailHeader)),
	})
}

func TraceFromContext(c context.Context) string {
	trace, _ := c.Value(CtxTraceContext{}).(string)
	return trace
}

func UserFromContext(c context.Context) User {
	user, _ := c.Value(CtxUser{}).(User)
	return user
}
