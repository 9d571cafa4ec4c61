// Package middleware exposes HTTP adapters over the credgate engine:
// a guard that rejects requests without a live session, an optional
// variant that lets anonymous traffic through, and a cookie helper for
// browser clients.
//
// The package translates HTTP semantics into engine calls and nothing
// more. Token parsing, status checks, and every authentication decision
// stay inside the engine; the middleware only extracts the token from
// the request and maps the engine's verdict to a status code.
package middleware
