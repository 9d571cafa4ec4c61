package credential

// Status is the lifecycle state of a credential record.
type Status uint8

const (
	// StatusActive permits authentication.
	StatusActive Status = iota
	// StatusFrozen blocks authentication; the record is untouched.
	StatusFrozen
	// StatusClosed retires the credential. The record is kept, never
	// erased.
	StatusClosed
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s <= StatusClosed
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFrozen:
		return "frozen"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// HistoryEntry is one rotation of the credential's password.
type HistoryEntry struct {
	Hash      string
	ChangedAt int64 // unix seconds
}

// Record is the persisted credential. Exactly one exists per owner.
//
// History is ordered oldest to newest and bounded by the store's depth;
// the newest entry always carries the same hash as CurrentHash, so the
// reuse guard can run over History alone.
type Record struct {
	ID      string
	OwnerID string

	// CurrentHash and History are the secret fields. Default reads
	// return them empty; use GetWithSecrets when verification or
	// rotation needs them.
	CurrentHash string
	History     []HistoryEntry

	Status Status

	// ResetTokenHash and ResetExpiresAt are set together while a reset
	// challenge is outstanding and cleared together when it resolves.
	ResetTokenHash [32]byte
	ResetExpiresAt int64 // unix seconds, 0 when no challenge

	// Version advances on every successful mutation. Writers pass the
	// version they read; a mismatch means a concurrent update won.
	Version uint64

	CreatedAt int64 // unix seconds
	UpdatedAt int64
}

// ResetPending reports whether a reset challenge is outstanding.
func (r *Record) ResetPending() bool {
	return r.ResetExpiresAt != 0
}

// Redacted returns a copy with the secret fields stripped. The copy is
// safe to hand across the engine boundary.
func (r *Record) Redacted() *Record {
	out := *r
	out.CurrentHash = ""
	out.History = nil
	out.ResetTokenHash = [32]byte{}
	return &out
}

// HistoryHashes flattens History for the reuse guard, oldest to newest.
func (r *Record) HistoryHashes() []string {
	out := make([]string, 0, len(r.History))
	for _, e := range r.History {
		out = append(out, e.Hash)
	}
	return out
}
