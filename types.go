package credgate

import (
	"context"
	"time"

	"github.com/aurelline/credgate/credential"
)

// CredentialStatus is the lifecycle state of a credential record. Any
// status may transition to any other; only StatusActive permits
// authentication.
type CredentialStatus = credential.Status

const (
	// StatusActive permits login and authenticated access.
	StatusActive = credential.StatusActive
	// StatusFrozen blocks authentication without destroying the record.
	StatusFrozen = credential.StatusFrozen
	// StatusClosed marks the credential retired. Closure is a status
	// transition, not erasure; the record stays in the store.
	StatusClosed = credential.StatusClosed
)

// Identity is the engine's view of an externally owned user identity.
// The engine stores only the OwnerID reference; profile data stays with
// the identity provider.
type Identity struct {
	OwnerID  string
	Nickname string
	Email    string
	Verified bool
}

// IdentityProvider is the interface the engine uses to reach the external
// identity service. Implementations must return ErrIdentityNotFound for
// absent records and ErrDependencyUnavailable (wrapped) for transport
// failures, so the engine can keep its uniform login error surface.
type IdentityProvider interface {
	RegisterIdentity(ctx context.Context, nickname, email string) (Identity, error)
	IdentityByEmail(ctx context.Context, email string) (Identity, error)
	IdentityByID(ctx context.Context, ownerID string) (Identity, error)
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Nickname        string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterResult is returned by [Engine.Register] once the identity is
// provisioned and its credential record created.
type RegisterResult struct {
	OwnerID      string
	CredentialID string
}

// LoginResult carries the signed session token and the public identity
// fields. Password hashes and history never appear here.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  Identity
}

// AuthContext is the immutable result of verifying a session token and
// re-checking the live credential status. The middleware attaches it to
// the request context; handlers read it with [AuthFromContext].
type AuthContext struct {
	Identity     Identity
	CredentialID string
	Status       CredentialStatus
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
