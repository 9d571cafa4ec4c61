package password

// MatchesAny reports whether candidate verifies against any hash in
// history. It short-circuits on the first match; entries are checked in
// order. A parse error on any entry aborts the check, since a credential
// with an unreadable history must not silently pass the reuse policy.
func MatchesAny(hasher *Argon2, candidate string, history []string) (bool, error) {
	for _, encoded := range history {
		match, err := hasher.Verify(candidate, encoded)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}
