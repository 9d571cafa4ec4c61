package credgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurelline/credgate/credential"
	"github.com/aurelline/credgate/password"
)

// ChangePassword rotates the owner's password after verifying the current
// one. The new plaintext must not match the current password or any hash
// still in the bounded history; a rejected change leaves the record
// untouched. The write is atomic and version-guarded: two concurrent
// changes for the same owner cannot interleave, the loser gets
// ErrUpdateConflict.
func (e *Engine) ChangePassword(ctx context.Context, ownerID, currentPassword, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ownerID == "" || currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: owner id and both passwords are required", ErrInvalidInput)
	}

	rec, err := e.creds.GetWithSecrets(ctx, ownerID)
	if err != nil {
		mapped := mapStoreErr(err)
		e.emitAudit(ctx, auditEventPasswordChange, ownerID, "", false, mapped, nil)
		return mapped
	}

	match, err := e.hasher.Verify(currentPassword, rec.CurrentHash)
	if err != nil {
		mapped := fmt.Errorf("%w: %v", ErrInternal, err)
		e.emitAudit(ctx, auditEventPasswordChange, ownerID, rec.ID, false, mapped, nil)
		return mapped
	}
	if !match {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChange, ownerID, rec.ID, false, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	return e.rotatePassword(ctx, rec, newPassword, auditEventPasswordChange)
}

// VerifyPassword checks a plaintext against the owner's current hash.
// The decision fails closed on any non-active status, regardless of hash
// correctness.
func (e *Engine) VerifyPassword(ctx context.Context, ownerID, plaintext string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	rec, err := e.creds.GetWithSecrets(ctx, ownerID)
	if err != nil {
		return false, mapStoreErr(err)
	}
	if rec.Status != credential.StatusActive {
		return false, nil
	}

	match, err := e.hasher.Verify(plaintext, rec.CurrentHash)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return match, nil
}

// rotatePassword is the shared tail of ChangePassword and the reset
// confirmation: reuse guard, hash, then the version-guarded store write.
// rec must have been loaded with secrets.
func (e *Engine) rotatePassword(ctx context.Context, rec *credential.Record, newPassword, auditEvent string) error {
	reused, err := password.MatchesAny(e.hasher, newPassword, rec.HistoryHashes())
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			mapped := fmt.Errorf("%w: %v", ErrInvalidInput, err)
			e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, false, mapped, nil)
			return mapped
		}
		mapped := fmt.Errorf("%w: %v", ErrInternal, err)
		e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, false, mapped, nil)
		return mapped
	}
	if reused {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, false, ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		mapped := mapHashErr(err)
		e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, false, mapped, nil)
		return mapped
	}

	// The hash work is done; bail out before the write if the request
	// was cancelled meanwhile. A cancelled context never leaves a
	// half-updated record because the store write is all-or-nothing.
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = e.creds.RotatePassword(
		ctx,
		rec.OwnerID,
		rec.Version,
		newHash,
		time.Now(),
		e.config.Password.HistoryDepth,
		true,
	)
	if err != nil {
		mapped := mapStoreErr(err)
		if errors.Is(mapped, ErrUpdateConflict) {
			e.metricInc(MetricPasswordChangeConflict)
		}
		e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, false, mapped, nil)
		return mapped
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEvent, rec.OwnerID, rec.ID, true, nil, nil)
	return nil
}
