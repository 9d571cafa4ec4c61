package credgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aurelline/credgate/credential"
)

// Login verifies a password against the owner's credential and issues a
// session token. The failure surface is deliberately flat: an unknown
// email, a missing credential record, a non-active status, and a wrong
// password all return ErrInvalidCredentials, so callers cannot probe
// which accounts exist. The one deliberate exception is
// ErrAccountUnverified, which the transport is expected to surface so
// the user can finish verification.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	identity, err := e.identities.IdentityByEmail(ctx, email)
	if err != nil {
		mapped := mapIdentityErr(err)
		if errors.Is(mapped, ErrIdentityNotFound) {
			mapped = ErrInvalidCredentials
		}
		return nil, e.failLogin(ctx, "", mapped, map[string]string{"email": email})
	}

	if !identity.Verified {
		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLogin, identity.OwnerID, "", false, ErrAccountUnverified, nil)
		return nil, ErrAccountUnverified
	}

	rec, err := e.creds.GetWithSecrets(ctx, identity.OwnerID)
	if err != nil {
		mapped := mapStoreErr(err)
		if errors.Is(mapped, ErrCredentialNotFound) {
			mapped = ErrInvalidCredentials
		}
		return nil, e.failLogin(ctx, identity.OwnerID, mapped, nil)
	}

	// Status is not secret; checking it before the hash keeps the
	// failure uniform while skipping pointless key derivation.
	if rec.Status != credential.StatusActive {
		return nil, e.failLogin(ctx, identity.OwnerID, ErrInvalidCredentials, map[string]string{
			"status": rec.Status.String(),
		})
	}

	match, err := e.hasher.Verify(plaintext, rec.CurrentHash)
	if err != nil {
		// A stored hash that no longer parses is an internal defect,
		// but the caller still only sees the uniform failure.
		e.emitAudit(ctx, auditEventLogin, identity.OwnerID, rec.ID, false,
			fmt.Errorf("%w: %v", ErrInternal, err), nil)
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}
	if !match {
		return nil, e.failLogin(ctx, identity.OwnerID, ErrInvalidCredentials, nil)
	}

	token, expiresAt, err := e.tokens.Issue(identity.OwnerID, rec.ID)
	if err != nil {
		mapped := fmt.Errorf("%w: %v", ErrInternal, err)
		return nil, e.failLogin(ctx, identity.OwnerID, mapped, nil)
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventLogin, identity.OwnerID, rec.ID, true, nil, nil)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}

func (e *Engine) failLogin(ctx context.Context, ownerID string, err error, metadata map[string]string) error {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLogin, ownerID, "", false, err, metadata)
	return err
}
