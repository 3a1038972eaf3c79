// Package tools holds the pluggable tool handlers the LLM can invoke
// through bracket tags, and the registry that resolves tag names to them.
package tools

import (
	"context"

	"haru/app/store"
)

// Context carries the per-conversation state a handler may need. Persona is
// a pointer on purpose: the persona tool mutates it so the very next LLM
// round already speaks with the new identity.
type Context struct {
	ConversationID string
	Persona        *store.Persona
}

// Handler is one named capability. Handle may do network or database I/O and
// must report every failure through the returned error; the executor turns
// it into data the LLM can reason about.
type Handler interface {
	// Name is the tag the LLM uses, e.g. "WEATHER". Matched case-sensitively.
	Name() string
	// Description goes into the "Available tools" section of the system prompt.
	Description() string
	// UsageRules goes into the "Rules" section; empty means no extra rules.
	UsageRules() string

	Handle(ctx context.Context, arg string, tc *Context) (string, error)
}
