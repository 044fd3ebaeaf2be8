// Package runctx carries the read-only metadata of a single run: the
// triggering event, the target branch, the actor and the changed-path list
// supplied by the invoking host.
package runctx

import (
	"github.com/google/uuid"
)

// Event types as supplied by the source-control host.
const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
)

// Context is the triggering event's metadata. It is immutable for the
// whole run; every component receives it by value or as a shared pointer
// that nobody writes after construction.
type Context struct {
	RunID        string
	Event        string
	Branch       string
	Actor        string
	ChangedPaths []string
}

// New builds a run context with a fresh run id.
func New(event, branch, actor string, changedPaths []string) *Context {
	return &Context{
		RunID:        uuid.NewString(),
		Event:        event,
		Branch:       branch,
		Actor:        actor,
		ChangedPaths: changedPaths,
	}
}
