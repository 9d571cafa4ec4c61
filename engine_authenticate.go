package credgate

import (
	"context"
	"errors"
	"time"

	"github.com/aurelline/credgate/credential"
)

// Authenticate verifies a session token and re-checks the live identity
// and credential behind it. Tokens are stateless, so a credential frozen
// after issuance still verifies cryptographically; the fresh store read
// here is what makes Frozen and Closed take effect immediately.
//
// Failures: ErrTokenInvalid for signature/expiry problems,
// ErrAccountFrozen / ErrAccountClosed when status blocks access, and
// ErrUnauthorized when the identity or credential no longer resolves.
func (e *Engine) Authenticate(ctx context.Context, token string) (*AuthContext, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	claims, err := e.tokens.Parse(token)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticate, "", "", false, ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	}

	identity, err := e.identities.IdentityByID(ctx, claims.UID)
	if err != nil {
		mapped := mapIdentityErr(err)
		if errors.Is(mapped, ErrIdentityNotFound) {
			mapped = ErrUnauthorized
		}
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, mapped)
	}

	rec, err := e.creds.Get(ctx, claims.UID)
	if err != nil {
		mapped := mapStoreErr(err)
		if errors.Is(mapped, ErrCredentialNotFound) {
			mapped = ErrUnauthorized
		}
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, mapped)
	}

	// The token must reference the credential that is still on file.
	if rec.ID != claims.CID {
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, ErrUnauthorized)
	}

	switch rec.Status {
	case credential.StatusActive:
	case credential.StatusFrozen:
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, ErrAccountFrozen)
	case credential.StatusClosed:
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, ErrAccountClosed)
	default:
		return nil, e.failAuthenticate(ctx, claims.UID, claims.CID, ErrUnauthorized)
	}

	auth := &AuthContext{
		Identity:     identity,
		CredentialID: rec.ID,
		Status:       rec.Status,
	}
	if claims.IssuedAt != nil {
		auth.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		auth.ExpiresAt = claims.ExpiresAt.Time
	}

	e.metricInc(MetricAuthenticateSuccess)
	e.emitAudit(ctx, auditEventAuthenticate, claims.UID, claims.CID, true, nil, nil)

	return auth, nil
}

// AuthenticateOptional is the lenient variant: any failure yields an
// anonymous result instead of an error. Endpoints that merely behave
// differently for signed-in callers use it; nothing that requires
// authentication should.
func (e *Engine) AuthenticateOptional(ctx context.Context, token string) (*AuthContext, bool) {
	if token == "" {
		return nil, false
	}
	auth, err := e.Authenticate(ctx, token)
	if err != nil {
		return nil, false
	}
	return auth, true
}

// TokenTTL exposes the configured session lifetime, for cookie max-age.
func (e *Engine) TokenTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.Token.TTL
}

// ProductionMode reports whether the engine runs with production
// hardening. The cookie helper keys its transport flags off this.
func (e *Engine) ProductionMode() bool {
	return e != nil && e.config.Security.ProductionMode
}

func (e *Engine) failAuthenticate(ctx context.Context, ownerID, credentialID string, err error) error {
	e.metricInc(MetricAuthenticateFailure)
	e.emitAudit(ctx, auditEventAuthenticate, ownerID, credentialID, false, err, nil)
	return err
}
