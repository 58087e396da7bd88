// Package shared holds small helpers used across the client packages.
package shared

// WipeByteArray overwrites b with zeros so passwords typed into the CLI do
// not linger in memory after use. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
