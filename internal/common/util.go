package common

// WipeByteArray zeroes b. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
