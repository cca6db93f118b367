// Package source provides experiment definition sources.
//
// A source answers "what does experiment X look like right now": its
// variants, weights, and activity window. Three implementations ship with
// the module:
//
//   - Static: fixed in-memory definitions, handy for tests and embedded use.
//   - HTTP: fetches definitions from the backend with short-lived memoization.
//   - KVWatch: mirrors a NATS JetStream KV bucket of definitions into memory
//     and keeps it current via a watcher, giving zero-latency lookups.
package source
