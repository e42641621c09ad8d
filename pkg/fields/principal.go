package fields

import "strings"

// Principal is the acting user. Forms only ever ask whether a capability is
// held.
type Principal interface {
	Can(capability string) bool
}

// Capabilities is a set-backed Principal. The "*" entry grants everything.
type Capabilities map[string]struct{}

// NewCapabilities builds a set from names.
func NewCapabilities(names ...string) Capabilities {
	caps := make(Capabilities, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			caps[name] = struct{}{}
		}
	}
	return caps
}

// Can reports whether capability is held. An empty capability always passes.
func (c Capabilities) Can(capability string) bool {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return true
	}
	if _, ok := c["*"]; ok {
		return true
	}
	_, ok := c[capability]
	return ok
}

// Anonymous holds no capabilities.
var Anonymous Principal = Capabilities{}

// Superuser holds every capability.
var Superuser Principal = NewCapabilities("*")
