package identity

// SetKDFForTests weakens the key box derivation parameters so tests do not
// pay for the production argon2id limits. The returned func restores them.
func SetKDFForTests() func() {
	previous := boxKDF
	boxKDF = kdfParams{passes: 1, memoryKiB: 64, lanes: 1}
	return func() {
		boxKDF = previous
	}
}
