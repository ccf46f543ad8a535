package common

// WipeByteArray zeroes b, e.g. a password once it has been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
