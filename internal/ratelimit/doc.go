// Package ratelimit spaces outbound calls to upstream data sources.
//
// Acquire is a blocking wait, not an admission-controlled bucket: the caller
// sleeps until the source's interval has elapsed since the previous call,
// then proceeds. Callers for the same source serialize; distinct sources
// never block one another. Sources may configure a fixed interval or a
// jitter window that is re-randomized on every acquire so that independent
// clients never fall into a synchronized retry rhythm.
package ratelimit
