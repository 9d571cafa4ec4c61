// Package credgate is an embeddable credential and session authentication
// engine. It owns the one-way transformation from plaintext passwords to
// stored credentials, enforces a bounded password-history reuse policy,
// verifies credentials at login, and issues stateless HS256 session tokens
// bound to the credential's lifecycle status.
//
// The engine keeps durable state in a Redis-backed credential store and
// resolves user identities through a caller-supplied [IdentityProvider].
// Build one with the fluent builder:
//
//	engine, err := credgate.New().
//		WithConfig(cfg).
//		WithRedis(redisClient).
//		WithIdentityProvider(identityClient).
//		Build()
//
// HTTP transport concerns (routing, cookies, guards) live in the middleware
// subpackage; the engine itself is transport-agnostic.
package credgate
