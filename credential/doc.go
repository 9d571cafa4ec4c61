// Package credential owns the durable credential record: the current
// password hash, the bounded FIFO history of prior hashes, the lifecycle
// status, and the optional reset challenge. Records are persisted in Redis
// as versioned binary blobs; every mutation goes through an optimistic
// WATCH/MULTI transaction so hash and history always move together.
package credential
