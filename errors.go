package credgate

import "errors"

// Sentinel errors returned by the engine. Callers classify failures with
// errors.Is; the engine never leaks store or provider internals past these.
var (
	// ErrInvalidInput covers malformed requests: empty fields, a password
	// confirmation mismatch, or input exceeding hard length bounds.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPasswordPolicy is returned when a candidate password fails the
	// configured minimum-length policy.
	ErrPasswordPolicy = errors.New("password policy violation")

	// ErrPasswordReuse is returned when a password change is rejected
	// because the candidate matches the current password or one still in
	// the bounded history.
	ErrPasswordReuse = errors.New("password was used recently")

	// ErrCredentialExists is returned by registration when the owner
	// identity already has a credential record.
	ErrCredentialExists = errors.New("credential already exists")

	// ErrCredentialNotFound is returned by operations that address a
	// specific credential record which does not exist.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrIdentityNotFound is returned by administrative lookups when the
	// identity provider has no record. Login never surfaces it; absent
	// identities collapse into ErrInvalidCredentials there.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInvalidCredentials is the uniform login failure. It covers
	// unknown email, missing credential record, and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountUnverified is returned by login when the identity record
	// exists but has not completed verification.
	ErrAccountUnverified = errors.New("account unverified")

	// ErrAccountFrozen is surfaced by Authenticate when the credential
	// status blocks access.
	ErrAccountFrozen = errors.New("account is frozen")

	// ErrAccountClosed is surfaced by Authenticate when the credential
	// has been closed.
	ErrAccountClosed = errors.New("account is closed")

	// ErrTokenInvalid covers every session-token verification failure:
	// bad signature, malformed claims, and expiry.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrUnauthorized is the generic authentication failure returned by
	// Authenticate when the token verifies but the backing identity or
	// credential no longer resolves.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResetDisabled is returned when the reset flow is switched off in
	// configuration.
	ErrResetDisabled = errors.New("password reset disabled")

	// ErrResetInvalid is returned when a password-reset token is unknown,
	// expired, or malformed.
	ErrResetInvalid = errors.New("password reset challenge invalid")

	// ErrUpdateConflict is returned when a credential mutation loses the
	// optimistic-versioning race. The record is unchanged; retry.
	ErrUpdateConflict = errors.New("credential update conflict")

	// ErrDependencyUnavailable wraps transport failures against the
	// credential store or the identity provider.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInternal covers unexpected failures that have no user-facing
	// classification.
	ErrInternal = errors.New("internal error")

	// ErrEngineNotReady is returned by every operation on a nil or
	// incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
