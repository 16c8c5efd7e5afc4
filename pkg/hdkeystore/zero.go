package hdkeystore

// zeroBytes overwrites a buffer holding key material before it goes out of
// scope. The keystore hands out copies of secrets, so callers inherit the
// same duty for the buffers they receive.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
