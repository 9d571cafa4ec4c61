package credgate

import (
	"context"
	"time"
)

const (
	auditEventRegister       = "credential.register"
	auditEventLogin          = "session.login"
	auditEventAuthenticate   = "session.authenticate"
	auditEventPasswordChange = "credential.password_change"
	auditEventStatusChange   = "credential.status_change"
	auditEventResetRequest   = "credential.reset_request"
	auditEventResetConfirm   = "credential.reset_confirm"
)

// emitAudit records one operation outcome. Failure details carry the
// sentinel text only; plaintext and hashes never enter an event.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	ownerID, credentialID string,
	success bool,
	failure error,
	metadata map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:    time.Now(),
		EventType:    eventType,
		OwnerID:      ownerID,
		CredentialID: credentialID,
		IP:           clientIPFromContext(ctx),
		UserAgent:    userAgentFromContext(ctx),
		Success:      success,
		Metadata:     metadata,
	}
	if failure != nil {
		event.Error = failure.Error()
	}

	e.audit.Emit(ctx, event)
}
