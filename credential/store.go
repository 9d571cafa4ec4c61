package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps transport failures against the backing
	// Redis instance.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrNotFound is returned when no record exists for the owner.
	ErrNotFound = errors.New("credential not found")
	// ErrAlreadyExists is returned by Create when the owner already has a
	// record.
	ErrAlreadyExists = errors.New("credential already exists")
	// ErrVersionConflict is returned when a mutation's expected version
	// no longer matches the stored record. Nothing was written.
	ErrVersionConflict = errors.New("credential version conflict")
)

// Concurrent writers invalidate each other's WATCH; a handful of retries
// rides out transient interleavings before giving up.
const maxRetries = 4

// Store persists credential records in Redis, one record per owner plus a
// credential-id index for reverse lookups.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store using prefix as the key namespace.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) credKey(ownerID string) string {
	return s.prefix + ":cred:" + ownerID
}

func (s *Store) indexKey(credentialID string) string {
	return s.prefix + ":idx:" + credentialID
}

// Create persists a new record. SETNX makes the one-record-per-owner
// invariant hold even under concurrent registration of the same owner.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	created, err := s.redis.SetNX(ctx, s.credKey(rec.OwnerID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !created {
		return ErrAlreadyExists
	}

	if err := s.redis.Set(ctx, s.indexKey(rec.ID), rec.OwnerID, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get fetches a record with the secret fields stripped.
func (s *Store) Get(ctx context.Context, ownerID string) (*Record, error) {
	rec, err := s.GetWithSecrets(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return rec.Redacted(), nil
}

// GetWithSecrets fetches the full record including the current hash,
// history, and reset challenge. Only verification and rotation paths
// should call it.
func (s *Store) GetWithSecrets(ctx context.Context, ownerID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.credKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// OwnerIDForCredential resolves a credential id back to its owner.
func (s *Store) OwnerIDForCredential(ctx context.Context, credentialID string) (string, error) {
	ownerID, err := s.redis.Get(ctx, s.indexKey(credentialID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ownerID, nil
}

// RotatePassword installs newHash as the current hash and appends it to
// the history, evicting the oldest entry beyond historyDepth. The write
// is guarded by fromVersion: if the record moved since the caller read
// it, ErrVersionConflict comes back and nothing changes. clearReset also
// retires any outstanding reset challenge in the same write.
func (s *Store) RotatePassword(
	ctx context.Context,
	ownerID string,
	fromVersion uint64,
	newHash string,
	changedAt time.Time,
	historyDepth int,
	clearReset bool,
) (*Record, error) {
	return s.update(ctx, ownerID, func(rec *Record) error {
		if rec.Version != fromVersion {
			return ErrVersionConflict
		}

		rec.CurrentHash = newHash
		rec.History = append(rec.History, HistoryEntry{
			Hash:      newHash,
			ChangedAt: changedAt.Unix(),
		})
		if historyDepth > 0 && len(rec.History) > historyDepth {
			rec.History = rec.History[len(rec.History)-historyDepth:]
		}

		if clearReset {
			rec.ResetTokenHash = [32]byte{}
			rec.ResetExpiresAt = 0
		}

		rec.UpdatedAt = changedAt.Unix()
		return nil
	})
}

// UpdateStatus transitions the record to status. Transitions are
// unconditional; setting the current status again is a no-op version
// bump.
func (s *Store) UpdateStatus(ctx context.Context, ownerID string, status Status) (*Record, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %d", ErrCorruptRecord, status)
	}

	return s.update(ctx, ownerID, func(rec *Record) error {
		rec.Status = status
		rec.UpdatedAt = time.Now().Unix()
		return nil
	})
}

// SetResetToken installs a reset challenge. The token hash and expiry are
// written together; an earlier outstanding challenge is replaced.
func (s *Store) SetResetToken(ctx context.Context, ownerID string, tokenHash [32]byte, expiresAt time.Time) (*Record, error) {
	return s.update(ctx, ownerID, func(rec *Record) error {
		rec.ResetTokenHash = tokenHash
		rec.ResetExpiresAt = expiresAt.Unix()
		rec.UpdatedAt = time.Now().Unix()
		return nil
	})
}

// ClearResetToken removes any outstanding reset challenge.
func (s *Store) ClearResetToken(ctx context.Context, ownerID string) (*Record, error) {
	return s.update(ctx, ownerID, func(rec *Record) error {
		rec.ResetTokenHash = [32]byte{}
		rec.ResetExpiresAt = 0
		rec.UpdatedAt = time.Now().Unix()
		return nil
	})
}

// Ping reports Redis availability and round-trip latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

// update runs apply under WATCH so the read-modify-write is atomic per
// record. Version advances on every successful write; a lost race retries
// until maxRetries, after which the store reports unavailability.
func (s *Store) update(ctx context.Context, ownerID string, apply func(*Record) error) (*Record, error) {
	key := s.credKey(ownerID)

	for attempt := 0; attempt < maxRetries; attempt++ {
		var updated *Record

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrNotFound
				}
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}

			rec, err := Decode(data)
			if err != nil {
				return err
			}

			if err := apply(rec); err != nil {
				return err
			}
			rec.Version++

			encoded, err := Encode(rec)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				return nil
			})
			if err != nil {
				return err
			}

			updated = rec
			return nil
		}, key)

		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrNotFound) ||
			errors.Is(err, ErrVersionConflict) ||
			errors.Is(err, ErrCorruptRecord) ||
			errors.Is(err, ErrRedisUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil, fmt.Errorf("%w: optimistic retries exhausted", ErrRedisUnavailable)
}
