// Package identity is the HTTP client for the external identity service.
// It implements the engine's IdentityProvider interface: registering a
// new identity and resolving identities by email or id, with absent
// records and transport failures kept distinct.
package identity
