// Package jwt issues and verifies the engine's stateless session tokens.
// Tokens are HS256-signed assertions carrying the owner and credential
// identifiers with issued-at and expiry; validity is decided by signature
// and expiry alone, never by a server-side list.
package jwt
