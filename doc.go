// Package abtest implements consistent A/B experiment assignment.
//
// The engine answers one question: which variant should this visitor see for
// this experiment, such that the answer never changes for the lifetime of the
// experiment. It layers redundant consistency mechanisms in a fixed
// precedence order:
//
//  1. Cookie tier: fast in-process cache keyed by experiment ID with a TTL.
//  2. Durable tier: restart-surviving cache (e.g. NATS JetStream KV).
//  3. Backend: the persisted assignment record, which is authoritative.
//  4. Sampler: a fresh weighted draw, persisted back to the backend.
//
// Inactive experiments short-circuit the whole chain: the baseline variant is
// served without touching caches or the backend, so traffic outside the
// experiment window is never enrolled.
//
// Two entry points are provided. Resolver is the stateless core: one call,
// one Resolution. Manager wraps a Resolver with a lifecycle state machine
// (Init, Loading, Resolved, Errored), identity management for anonymous
// visitors, fallback substitution on failure, and lifecycle hooks.
//
// Example usage:
//
//	cfg := abtest.DefaultConfig()
//	cfg.BaseURL = "http://abtest-backend:8080"
//
//	mgr, err := abtest.NewManager(cfg, &exp,
//	    abtest.WithPersistence(client.New(cfg.BaseURL)),
//	    abtest.WithIdentity(abtest.UserIdentity("user-42")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := mgr.Resolve(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Variant)
package abtest
