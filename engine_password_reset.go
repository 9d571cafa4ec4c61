package credgate

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aurelline/credgate/credential"
)

const resetSecretBytes = 32

// RequestPasswordReset opens a reset challenge for the identity behind
// email and returns the opaque token to deliver out-of-band. Only a
// SHA-256 of the token's secret half is persisted; the plaintext token
// exists nowhere but the return value. A newer request replaces any
// outstanding challenge.
//
// The engine reports ErrIdentityNotFound for unknown emails; transports
// that must not disclose account existence are expected to mask it.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if !e.config.Reset.Enabled {
		return "", ErrResetDisabled
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	identity, err := e.identities.IdentityByEmail(ctx, email)
	if err != nil {
		return "", mapIdentityErr(err)
	}

	rec, err := e.creds.Get(ctx, identity.OwnerID)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if rec.Status == credential.StatusClosed {
		return "", e.failReset(ctx, auditEventResetRequest, identity.OwnerID, ErrResetInvalid)
	}

	secret := make([]byte, resetSecretBytes)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	expiresAt := time.Now().Add(e.config.Reset.TTL)
	if _, err := e.creds.SetResetToken(ctx, identity.OwnerID, sha256.Sum256(secret), expiresAt); err != nil {
		return "", e.failReset(ctx, auditEventResetRequest, identity.OwnerID, mapStoreErr(err))
	}

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventResetRequest, identity.OwnerID, rec.ID, true, nil, nil)

	// Token = credential id + secret. The id half routes the confirm
	// call back to the record without an extra identity lookup.
	return rec.ID + "." + base64.RawURLEncoding.EncodeToString(secret), nil
}

// ConfirmPasswordReset redeems a reset token and installs newPassword
// through the same reuse-guarded, version-checked rotation as a regular
// password change. The challenge is cleared in the same atomic write, so
// a token can be redeemed at most once.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !e.config.Reset.Enabled {
		return ErrResetDisabled
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	credentialID, secret, ok := splitResetToken(token)
	if !ok {
		return e.failReset(ctx, auditEventResetConfirm, "", ErrResetInvalid)
	}

	ownerID, err := e.creds.OwnerIDForCredential(ctx, credentialID)
	if err != nil {
		mapped := mapStoreErr(err)
		if errors.Is(mapped, ErrCredentialNotFound) {
			mapped = ErrResetInvalid
		}
		return e.failReset(ctx, auditEventResetConfirm, "", mapped)
	}

	rec, err := e.creds.GetWithSecrets(ctx, ownerID)
	if err != nil {
		return e.failReset(ctx, auditEventResetConfirm, ownerID, mapStoreErr(err))
	}

	if rec.Status == credential.StatusClosed || !rec.ResetPending() {
		return e.failReset(ctx, auditEventResetConfirm, ownerID, ErrResetInvalid)
	}
	if time.Now().Unix() > rec.ResetExpiresAt {
		// Expired challenges are dead weight; clearing is best effort.
		if _, clearErr := e.creds.ClearResetToken(ctx, ownerID); clearErr != nil {
			log.Printf("credgate: clearing expired reset token for %s: %v", ownerID, clearErr)
		}
		return e.failReset(ctx, auditEventResetConfirm, ownerID, ErrResetInvalid)
	}

	digest := sha256.Sum256(secret)
	if subtle.ConstantTimeCompare(digest[:], rec.ResetTokenHash[:]) != 1 {
		return e.failReset(ctx, auditEventResetConfirm, ownerID, ErrResetInvalid)
	}

	if err := e.rotatePassword(ctx, rec, newPassword, auditEventResetConfirm); err != nil {
		e.metricInc(MetricResetConfirmFailure)
		return err
	}

	e.metricInc(MetricResetConfirmSuccess)
	return nil
}

func splitResetToken(token string) (credentialID string, secret []byte, ok bool) {
	credentialID, encoded, found := strings.Cut(token, ".")
	if !found || credentialID == "" || encoded == "" {
		return "", nil, false
	}

	secret, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(secret) != resetSecretBytes {
		return "", nil, false
	}
	return credentialID, secret, true
}

func (e *Engine) failReset(ctx context.Context, event, ownerID string, err error) error {
	if event == auditEventResetConfirm {
		e.metricInc(MetricResetConfirmFailure)
	}
	e.emitAudit(ctx, event, ownerID, "", false, err, nil)
	return err
}
