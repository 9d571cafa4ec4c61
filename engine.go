package credgate

import (
	"errors"
	"fmt"

	"github.com/aurelline/credgate/credential"
	"github.com/aurelline/credgate/jwt"
	"github.com/aurelline/credgate/password"
)

// Engine composes the hasher, the credential store, the token manager,
// and the identity provider into the register/login/authenticate flows.
// It holds no cross-request mutable state beyond the audit dispatcher and
// metrics counters; all durable state lives in the credential store.
type Engine struct {
	config     Config
	creds      *credential.Store
	hasher     *password.Argon2
	tokens     *jwt.Manager
	identities IdentityProvider
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() error {
	if e == nil || e.creds == nil || e.hasher == nil || e.tokens == nil || e.identities == nil {
		return ErrEngineNotReady
	}
	return nil
}

// mapStoreErr converts credential-store failures to the engine's error
// taxonomy before they cross the boundary.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credential.ErrNotFound):
		return ErrCredentialNotFound
	case errors.Is(err, credential.ErrAlreadyExists):
		return ErrCredentialExists
	case errors.Is(err, credential.ErrVersionConflict):
		return ErrUpdateConflict
	case errors.Is(err, credential.ErrRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

// mapIdentityErr normalizes identity-provider failures. Sentinels pass
// through; anything foreign counts as the dependency being unreachable.
func mapIdentityErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIdentityNotFound),
		errors.Is(err, ErrDependencyUnavailable),
		errors.Is(err, ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
}
