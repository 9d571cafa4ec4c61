// Package password implements the one-way credential transformation and
// the reuse guard. Hashes are Argon2id encoded as PHC strings with an
// embedded random salt, so hashing the same plaintext twice yields
// different stored values; equality is only ever decided by Verify.
package password
