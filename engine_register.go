package credgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aurelline/credgate/credential"
	"github.com/aurelline/credgate/password"
	"github.com/google/uuid"
)

// Register provisions a new owner identity through the identity provider
// and creates its credential record. The first password seeds the reuse
// history, so an immediate change back to it is already rejected.
//
// Fails with ErrInvalidInput on malformed input or confirmation mismatch,
// ErrPasswordPolicy when the password is too short, and
// ErrCredentialExists when the owner already holds a credential.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(req.Nickname)
	email := strings.TrimSpace(req.Email)

	if nickname == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: nickname, email, and password are required", ErrInvalidInput)
	}
	if req.Password != req.ConfirmPassword {
		err := fmt.Errorf("%w: password confirmation does not match", ErrInvalidInput)
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, "", "", false, err, map[string]string{"email": email})
		return nil, err
	}

	// Hash before touching the identity service so a policy rejection
	// never leaves an orphaned identity behind.
	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		mapped := mapHashErr(err)
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, "", "", false, mapped, map[string]string{"email": email})
		return nil, mapped
	}

	identity, err := e.identities.RegisterIdentity(ctx, nickname, email)
	if err != nil {
		mapped := mapIdentityErr(err)
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, "", "", false, mapped, map[string]string{"email": email})
		return nil, mapped
	}

	now := time.Now()
	rec := &credential.Record{
		ID:          uuid.NewString(),
		OwnerID:     identity.OwnerID,
		CurrentHash: hash,
		History: []credential.HistoryEntry{
			{Hash: hash, ChangedAt: now.Unix()},
		},
		Status:    credential.StatusActive,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if err := mapStoreErr(e.creds.Create(ctx, rec)); err != nil {
		if errors.Is(err, ErrCredentialExists) {
			e.metricInc(MetricRegisterDuplicate)
		} else {
			e.metricInc(MetricRegisterFailure)
		}
		e.emitAudit(ctx, auditEventRegister, identity.OwnerID, rec.ID, false, err, nil)
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, identity.OwnerID, rec.ID, true, nil, nil)

	return &RegisterResult{
		OwnerID:      identity.OwnerID,
		CredentialID: rec.ID,
	}, nil
}

// mapHashErr converts hasher failures: length-policy violations become
// caller-visible sentinels, everything else is internal.
func mapHashErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, password.ErrTooShort):
		return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	case errors.Is(err, password.ErrTooLong):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
