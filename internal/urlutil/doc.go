// Package urlutil provides URL canonicalization shared by every component
// that keys state by URL.
//
// The frontier, the page store, the link map, the categorizer, and the graph
// builder all deduplicate and join on canonical URLs. They must agree on a
// single canonical form, so canonicalization lives here and nowhere else.
// A component applying its own variant would silently split one page into
// several identities.
//
// Canonical form: lowercase scheme and host, no fragment, no query, empty
// path normalized to "/", trailing slash trimmed on non-root paths. Query
// strings are dropped deliberately: on documentation sites they select
// presentation (pagination, highlighting), not distinct documents.
package urlutil
