// Package choices provides named option sources for select, radio and
// checkbox-group controls, prefix-first search helpers, and a small net/http
// handler that returns JSON options for script-driven inputs.
//
// The handler responds to GET and HEAD requests and supports query and limit
// parameters to filter results. Sources are resolved by name from a Registry,
// so a single route can serve posts, terms, users or any static list.
package choices
