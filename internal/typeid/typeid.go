package typeid

import "go.jetify.com/typeid/v2"

const (
	// PrefixView tags one viewer session (one Coordinator).
	PrefixView = "view"
	// PrefixLifecycle tags one controller lifecycle within a session.
	PrefixLifecycle = "life"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewViewID() string      { return New(PrefixView) }
func NewLifecycleID() string { return New(PrefixLifecycle) }
