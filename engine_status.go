package credgate

import (
	"context"
	"fmt"

	"github.com/aurelline/credgate/credential"
)

// SetStatus transitions the owner's credential to status. Any status may
// move to any other; repeating the current status is a harmless no-op.
// Closure keeps the record in the store, it only stops authentication.
//
// This is the administrative hook: freezing takes effect on the next
// Login or Authenticate call, not on already-running requests.
func (e *Engine) SetStatus(ctx context.Context, ownerID string, status CredentialStatus) (*credential.Record, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status", ErrInvalidInput)
	}

	rec, err := e.creds.UpdateStatus(ctx, ownerID, status)
	if err != nil {
		mapped := mapStoreErr(err)
		e.emitAudit(ctx, auditEventStatusChange, ownerID, "", false, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricStatusChanged)
	e.emitAudit(ctx, auditEventStatusChange, ownerID, rec.ID, true, nil, map[string]string{
		"status": status.String(),
	})

	return rec.Redacted(), nil
}

// Credential returns the owner's record with the secret fields stripped.
func (e *Engine) Credential(ctx context.Context, ownerID string) (*credential.Record, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	rec, err := e.creds.Get(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return rec, nil
}
