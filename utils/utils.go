package utils

import "unsafe"

// B2S converts a byte slice to a string without allocating. The caller must
// not mutate the slice afterwards.
func B2S(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}
